package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/friendship"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/response"
)

type Handler struct {
	service friendship.Service
}

func NewHandler(service friendship.Service) *Handler {
	return &Handler{service: service}
}

type connectionURI struct {
	UserID string `uri:"userId" binding:"required,uuid"`
}

// Get returns how the caller is connected to another user.
func (h *Handler) Get(c *gin.Context) {
	var uri connectionURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	conn, err := h.service.Connection(c.Request.Context(), auth.GetUserID(c), uri.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewConnectionResponse(uri.UserID, conn))
}
