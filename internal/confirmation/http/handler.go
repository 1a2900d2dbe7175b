package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roomly/roomly-backend/internal/confirmation"
	"github.com/roomly/roomly-backend/internal/pkg/response"
)

// Handler serves the public, unauthenticated confirmation endpoints reached
// from invitation email links.
type Handler struct {
	service confirmation.Service
}

func NewHandler(service confirmation.Service) *Handler {
	return &Handler{service: service}
}

// Respond consumes a confirmation token with an accept/decline decision.
func (h *Handler) Respond(c *gin.Context) {
	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	res, err := h.service.Respond(c.Request.Context(), req.Token, confirmation.Decision(req.Decision))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewRespondResponse(res))
}

// Info returns the invitation details behind a still-valid token so the
// respond page can show what is being answered.
func (h *Handler) Info(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	inv, err := h.service.Info(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewInviteResponse(inv))
}
