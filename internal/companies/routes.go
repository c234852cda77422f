package companies

import "github.com/gin-gonic/gin"

// RegisterRoutes registers company routes
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.POST("", h.Create)
	r.GET("", h.List)
	r.GET("/:id", h.Get)
	r.PATCH("/:id", h.Update)
	r.GET("/:id/status", h.Status)
	r.POST("/:id/status", h.ChangeStatus)
	r.GET("/:id/history", h.History)
}
