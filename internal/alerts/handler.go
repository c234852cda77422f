package alerts

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes registers alert routes
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("", h.List)
	r.GET("/:id", h.Get)
	r.POST("/:id/resolve", h.Resolve)
}

func (h *Handler) List(c *gin.Context) {
	filter := Filter{Limit: 100}

	if raw := c.Query("company_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company_id"})
			return
		}
		filter.CompanyID = &id
	}
	if raw := c.Query("resolved"); raw != "" {
		resolved := raw == "true"
		filter.Resolved = &resolved
	}
	if raw := c.Query("type"); raw != "" {
		filter.Type = &raw
	}

	alerts, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alerts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	alert, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load alert"})
		return
	}
	if alert == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	c.JSON(http.StatusOK, alert)
}

func (h *Handler) Resolve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	var resolvedBy *uuid.UUID
	if raw, ok := c.Get("user_id"); ok {
		if userID, ok := raw.(uuid.UUID); ok {
			resolvedBy = &userID
		}
	}

	alert, err := h.repo.Resolve(c.Request.Context(), id, resolvedBy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve alert"})
		return
	}
	if alert == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	c.JSON(http.StatusOK, alert)
}
