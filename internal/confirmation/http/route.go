package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the public confirmation endpoints. No auth
// middleware: attendees reach these from an email link without an account.
func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/meeting-confirmation")
	{
		group.POST("/respond", h.Respond)
		group.GET("/respond-info", h.Info)
	}
}
