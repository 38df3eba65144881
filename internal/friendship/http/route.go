package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware ...gin.HandlerFunc) {
	group := g.Group("/connections")
	group.Use(authMiddleware...)
	{
		group.GET("/:userId", h.Get)
	}
}
