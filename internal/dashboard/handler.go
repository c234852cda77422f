package dashboard

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	aggregator *Aggregator
}

func NewHandler(aggregator *Aggregator) *Handler {
	return &Handler{aggregator: aggregator}
}

// RegisterRoutes registers dashboard routes
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/summary", h.Summary)
	r.GET("/transitions", h.Transitions)
}

func (h *Handler) Summary(c *gin.Context) {
	summary, err := h.aggregator.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) Transitions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	transitions, err := h.aggregator.RecentTransitions(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load transitions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transitions": transitions})
}
