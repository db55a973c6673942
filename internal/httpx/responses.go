package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"bookstore/internal/apperror"
)

type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Success bool                  `json:"success"`
	Errors  []apperror.FieldError `json:"errors"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func JSONSuccess(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, SuccessResponse{Success: true, Data: data})
}

func JSONSuccessCreated(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, SuccessResponse{Success: true, Data: data})
}

func JSONError(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, ErrorResponse{Success: false, Message: message})
}

func JSONValidationError(w http.ResponseWriter, fields []apperror.FieldError) {
	JSON(w, http.StatusBadRequest, ValidationErrorResponse{Success: false, Errors: fields})
}

var (
	errInvalidBody  = apperror.New(http.StatusBadRequest, "Invalid request body")
	errBodyTooLarge = apperror.New(http.StatusRequestEntityTooLarge, "Request body too large")
)

// DecodeJSON decodes the request body into dst. Decoding failures are
// reported as a 400 with a generic message, an oversized body as a 413.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return errInvalidBody
	}
	return nil
}

// NotFound answers requests that match no route.
func NotFound(w http.ResponseWriter, r *http.Request) {
	JSONError(w, http.StatusNotFound, "Route not found")
}
