package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/starter-webapi/internal/application"
	"github.com/oksasatya/starter-webapi/internal/domain/entity"
	"github.com/oksasatya/starter-webapi/pkg/response"
	"github.com/oksasatya/starter-webapi/pkg/validation"
)

// statusFor maps domain and application errors to an HTTP status and message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, application.ErrAuthenticationFailed):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, entity.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, entity.ErrEmailAlreadyExists):
		return http.StatusConflict, "email already exists"
	case errors.Is(err, entity.ErrInvalidUser):
		return http.StatusBadRequest, "invalid user"
	case errors.Is(err, application.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, application.ErrSearchUnavailable):
		return http.StatusServiceUnavailable, "search is not available"
	}
	return http.StatusInternalServerError, "internal server error"
}

func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	status, msg := statusFor(err)
	var details any
	switch status {
	case http.StatusBadRequest:
		details = err.Error()
	case http.StatusInternalServerError:
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"route":      c.FullPath(),
			}).Error("request failed")
		}
	}
	response.JSON(c, response.Error[any](c, status, msg, details))
}

func writeBindError(c *gin.Context, err error) {
	response.JSON(c, response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err)))
}
