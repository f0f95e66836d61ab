package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/link-shortener/internal/links"
	"go.uber.org/zap"
)

// statusFor maps a link error to an HTTP status. Unknown errors map to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, links.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, links.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, links.ErrInvalidControlKey):
		return http.StatusUnauthorized
	case errors.Is(err, links.ErrInvalidID),
		errors.Is(err, links.ErrIDTooLong),
		errors.Is(err, links.ErrInvalidTarget),
		errors.Is(err, links.ErrNothingToEdit):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// toAPIError converts a link error into a huma error. Internal details are only logged.
func (h *LinkHandler) toAPIError(op string, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("link operation failed", zap.String("op", op), zap.Error(err))

		return huma.Error500InternalServerError("internal server error")
	}

	var bulkErr *links.BulkError
	if errors.As(err, &bulkErr) {
		return huma.NewError(status, bulkErr.Error(), &huma.ErrorDetail{
			Message:  bulkErr.Err.Error(),
			Location: fmt.Sprintf("body[%d]", bulkErr.Index-1),
			Value:    bulkErr.Index,
		})
	}

	return huma.NewError(status, err.Error())
}
