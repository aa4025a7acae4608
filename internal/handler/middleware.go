package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lingualearn/auth-service/internal/domain"
	"github.com/lingualearn/auth-service/internal/dto"
	"github.com/lingualearn/auth-service/internal/service"
)

const currentUserKey = "current_user"

// AuthMiddleware validates the bearer token and attaches the resolved user to
// the request context. Validation goes through the service so a deleted
// account is rejected even with a well-signed token.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Authorization header is required",
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		current, err := authService.ValidateAccessToken(c.Request.Context(), parts[1])
		if err != nil {
			writeError(c, err)
			c.Abort()
			return
		}

		c.Set(currentUserKey, current)
		c.Next()
	}
}

// CurrentUserFromContext returns the user attached by AuthMiddleware.
func CurrentUserFromContext(c *gin.Context) (*domain.CurrentUser, bool) {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	current, ok := value.(*domain.CurrentUser)
	return current, ok
}
