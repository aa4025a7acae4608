package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lingualearn/auth-service/internal/dto"
	"github.com/lingualearn/auth-service/internal/service"
)

// writeError maps a service error onto an HTTP response. Unclassified errors
// are internal: they are attached to the gin context for the logger and the
// caller gets a generic body.
func writeError(c *gin.Context, err error) {
	var authErr *service.Error
	if errors.As(err, &authErr) {
		status, label := http.StatusInternalServerError, "Internal Server Error"
		switch authErr.Kind {
		case service.KindValidation:
			status, label = http.StatusBadRequest, "Bad Request"
		case service.KindConflict:
			status, label = http.StatusConflict, "Conflict"
		case service.KindUnauthorized:
			status, label = http.StatusUnauthorized, "Unauthorized"
		case service.KindForbidden:
			status, label = http.StatusForbidden, "Forbidden"
		}
		c.JSON(status, dto.ErrorResponse{
			Error:   label,
			Message: authErr.Message,
		})
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error:   "Internal Server Error",
		Message: "Something went wrong",
	})
}
