package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes registers auth routes
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/me", handler.Me)
}
