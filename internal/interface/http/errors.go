package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/morningforge/internal/application"
	"github.com/oksasatya/morningforge/internal/domain/entity"
	"github.com/oksasatya/morningforge/pkg/helpers"
	"github.com/oksasatya/morningforge/pkg/response"
	"github.com/oksasatya/morningforge/pkg/validation"
)

// writeError maps domain and application errors to status codes. Anything
// unrecognised is logged and reported as a 500 without details.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var locked *application.LockedError
	switch {
	case errors.Is(err, entity.ErrDuplicateEmail):
		response.Error[any](c, http.StatusConflict, "email already registered", nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, entity.ErrTrialAlreadyUsed):
		response.Error[any](c, http.StatusConflict, "trial already used", nil)
	case errors.Is(err, application.ErrNotAuthenticated):
		response.Error[any](c, http.StatusUnauthorized, "not authenticated", nil)
	case errors.As(err, &locked):
		response.Error[any](c, http.StatusPaymentRequired, "pro required", gin.H{"locked": locked.Features})
	case errors.Is(err, application.ErrProRequired):
		response.Error[any](c, http.StatusPaymentRequired, "pro required", nil)
	case errors.Is(err, application.ErrGenerationFailed):
		response.Error[any](c, http.StatusBadGateway, "routine generation failed", nil)
	case errors.Is(err, application.ErrExportUnavailable):
		response.Error[any](c, http.StatusServiceUnavailable, "export not available", nil)
	case errors.Is(err, helpers.ErrPasswordTooLong):
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"password": "must be 6 to 72 characters long"})
	default:
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"path":       c.FullPath(),
				"request_id": c.GetString(response.RequestIDKey),
			}).Error("request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}

func bindError(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
