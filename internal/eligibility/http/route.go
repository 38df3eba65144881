package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware ...gin.HandlerFunc) {
	group := g.Group("/properties/:id")
	group.Use(authMiddleware...)
	{
		group.GET("/eligibility", h.Get)
	}
}
