package httpx

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"bookstore/internal/apperror"
	"bookstore/internal/platform/crypto"
)

// WriteError is the terminal error handler for every route: it maps err to
// a status code and a client-safe body. Unclassified errors are logged and
// reported as a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *apperror.ValidationError
		appErr        *apperror.Error
	)

	switch {
	case errors.As(err, &validationErr):
		JSONValidationError(w, validationErr.Fields)
	case errors.Is(err, apperror.ErrDuplicateKey):
		JSONError(w, http.StatusBadRequest, "Duplicate field value entered")
	case errors.Is(err, crypto.ErrTokenExpired):
		JSONError(w, http.StatusUnauthorized, "Token expired")
	case errors.Is(err, crypto.ErrInvalidToken):
		JSONError(w, http.StatusUnauthorized, "Invalid token")
	case errors.As(err, &appErr):
		status := appErr.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		message := appErr.Message
		if message == "" {
			message = "Server Error"
		}
		JSONError(w, status, message)
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("unhandled error")
		JSONError(w, http.StatusInternalServerError, "Server Error")
	}
}
