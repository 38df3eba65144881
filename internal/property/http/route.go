package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *PropertyHandler, authMiddleware ...gin.HandlerFunc) {
	group := g.Group("/properties")

	// === Authenticated Routes ===
	group.Use(authMiddleware...)
	{
		group.GET("", h.List)                                            // List properties
		group.POST("", h.Create)                                         // List a new property
		group.GET("/:id", h.Get)                                         // Property details
		group.PATCH("/:id/policy", h.UpdatePolicy)                       // Change booking policy
		group.PATCH("/:id/blocked-intervals", h.ReplaceBlockedIntervals) // Replace blocked dates
	}
}
