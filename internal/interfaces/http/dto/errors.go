package dto

import "net/http"

// Error codes surfaced by the HTTP layer. Domain errors carry these codes
// directly; transport-level failures use the ERR_* codes.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeNotFound is used when a route or resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeRequestTooLarge is used when a request body exceeds the limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Domain error codes (see domain/shared/errors.go)
const (
	CodeNotFound               = "NOT_FOUND"
	CodeValidationFailure      = "VALIDATION_FAILURE"
	CodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeIncompleteCount        = "INCOMPLETE_COUNT"
	CodeConcurrencyConflict    = "CONCURRENCY_CONFLICT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	ErrCodeNotFound:    http.StatusNotFound,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	CodeNotFound:          http.StatusNotFound,
	CodeValidationFailure: http.StatusBadRequest,

	// Business rule violations -> 422 Unprocessable Entity
	CodeInvalidStateTransition: http.StatusUnprocessableEntity,
	CodeInsufficientStock:      http.StatusUnprocessableEntity,
	CodeIncompleteCount:        http.StatusUnprocessableEntity,

	// Optimistic locking failure is retryable -> 409 Conflict
	CodeConcurrencyConflict: http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
