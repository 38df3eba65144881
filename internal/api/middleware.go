package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/stay-booking-backend/internal/user"
)

// RequireActiveUser rejects tokens whose user was deleted or disabled after
// the token was issued. It MUST be used after auth.AuthRequired middleware.
func RequireActiveUser(userService user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.GetUserID(c)
		if userID == "" {
			response.Error(c, auth.ErrInvalidToken)
			c.Abort()
			return
		}

		u, err := userService.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				err = auth.ErrInvalidToken
			}
			response.Error(c, err)
			c.Abort()
			return
		}

		if !u.IsActive {
			response.Error(c, user.ErrAccountDisabled)
			c.Abort()
			return
		}

		c.Next()
	}
}
