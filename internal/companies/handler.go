package companies

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"kenshin-works/checkup-portal/checkup-portal-backend/pkg/workflows"
)

type Handler struct {
	service CompanyService
}

func NewHandler(service CompanyService) *Handler {
	return &Handler{service: service}
}

type changeStatusPayload struct {
	NewStatus string `json:"new_status" binding:"required"`
	Reason    string `json:"reason"`
	Force     bool   `json:"force"`
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.CreatedBy = userIDFromContext(c)

	company, err := h.service.CreateCompany(c.Request.Context(), req)
	if err != nil {
		var unknown *workflows.UnknownStatusError
		if errors.As(err, &unknown) {
			c.JSON(http.StatusBadRequest, gin.H{"error": unknown.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create company"})
		return
	}
	c.JSON(http.StatusCreated, company)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseCompanyID(c)
	if !ok {
		return
	}

	company, err := h.service.GetCompany(c.Request.Context(), id)
	if err != nil {
		respondCompanyError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *Handler) List(c *gin.Context) {
	filter := Filter{Limit: 100}

	if raw := c.Query("status"); raw != "" {
		code := workflows.StatusCode(raw)
		if !workflows.IsValidStatus(code) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status code"})
			return
		}
		filter.Status = &code
	}
	if raw := c.Query("phase"); raw != "" {
		phase := workflows.Phase(raw)
		if len(workflows.StatusesInPhase(phase)) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown phase"})
			return
		}
		filter.Phase = &phase
	}

	companies, err := h.service.ListCompanies(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list companies"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"companies": companies})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseCompanyID(c)
	if !ok {
		return
	}

	var req UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	company, err := h.service.UpdateCompany(c.Request.Context(), id, req)
	if err != nil {
		respondCompanyError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

// Status returns the company's current status, the legal next transitions,
// and the full status catalog for UI rendering.
func (h *Handler) Status(c *gin.Context) {
	id, ok := parseCompanyID(c)
	if !ok {
		return
	}

	view, err := h.service.CompanyStatus(c.Request.Context(), id)
	if err != nil {
		respondCompanyError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) History(c *gin.Context) {
	id, ok := parseCompanyID(c)
	if !ok {
		return
	}

	history, err := h.service.ListHistory(c.Request.Context(), id)
	if err != nil {
		respondCompanyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// ChangeStatus invokes the transition operation. Force requires the admin
// role; the rule-table bypass itself is enforced by the workflow validator.
func (h *Handler) ChangeStatus(c *gin.Context) {
	id, ok := parseCompanyID(c)
	if !ok {
		return
	}

	var payload changeStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if payload.Force {
		role, _ := c.Get("role")
		if role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "force transition requires admin role"})
			return
		}
	}

	result, rejection, err := h.service.ChangeStatus(c.Request.Context(), id, ChangeStatusRequest{
		NewStatus: workflows.StatusCode(payload.NewStatus),
		Reason:    payload.Reason,
		ChangedBy: userIDFromContext(c),
		Force:     payload.Force,
	})
	if err != nil {
		respondCompanyError(c, err)
		return
	}
	if rejection != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     rejection.Message(),
			"rejection": rejection,
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseCompanyID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company id"})
		return uuid.Nil, false
	}
	return id, true
}

func respondCompanyError(c *gin.Context, err error) {
	if errors.Is(err, ErrCompanyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "company not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func userIDFromContext(c *gin.Context) *uuid.UUID {
	raw, ok := c.Get("user_id")
	if !ok {
		return nil
	}
	id, ok := raw.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}
