package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/devotional-api/internal/apperr"
	"go.uber.org/zap"
)

// httpError maps service errors to huma responses. Storage errors are logged
// here and reported as 503 without their cause.
func httpError(logger *zap.Logger, op string, err error) error {
	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		return huma.Error422UnprocessableEntity(verr.Message, &huma.ErrorDetail{
			Message:  verr.Message,
			Location: "body." + verr.Field,
		})
	case errors.Is(err, apperr.ErrForbidden):
		return huma.Error403Forbidden("You are not allowed to do that")
	case errors.Is(err, apperr.ErrNotFound):
		return huma.Error404NotFound("Not found")
	default:
		logger.Error(op+" failed", zap.Error(err))
		return huma.Error503ServiceUnavailable("Temporarily unavailable, please try again")
	}
}
