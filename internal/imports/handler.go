package imports

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers email import routes
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.POST("/email", h.Ingest)
	r.GET("", h.List)
	r.POST("/:id/link", h.Link)
}

func (h *Handler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.service.Ingest(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store import"})
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) List(c *gin.Context) {
	var companyID *uuid.UUID
	if raw := c.Query("company_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company_id"})
			return
		}
		companyID = &id
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	records, err := h.service.List(c.Request.Context(), companyID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list imports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"imports": records})
}

type linkPayload struct {
	CompanyID uuid.UUID `json:"company_id" binding:"required"`
}

func (h *Handler) Link(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid import id"})
		return
	}

	var payload linkPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Link(c.Request.Context(), id, payload.CompanyID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to link import"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "linked"})
}
