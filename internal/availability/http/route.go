package http

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts availability under /properties/:id.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware ...gin.HandlerFunc) {
	group := g.Group("/properties/:id")
	group.Use(authMiddleware...)
	{
		group.GET("/availability", h.Get)
		group.GET("/availability/check", h.Check)
		group.GET("/calendar.ics", h.Calendar)
	}
}
