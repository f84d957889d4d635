package dto

import (
	"net/http"
	"time"

	"github.com/shopdesk/backend/internal/domain/fulfillment"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when an order, return request or item is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConcurrencyConflict is used when the order was modified by another request
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Fulfillment error codes
const (
	ErrCodeInvalidTransition = "ERR_INVALID_TRANSITION"
	ErrCodeReasonRequired    = "ERR_REASON_REQUIRED"
	ErrCodeInvalidStatus     = "ERR_INVALID_STATUS"
	ErrCodeInvalidQuantity   = "ERR_INVALID_QUANTITY"
	ErrCodeLockedForRefund   = "ERR_LOCKED_FOR_REFUND"
	ErrCodeItemsStillPending = "ERR_ITEMS_STILL_PENDING"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeValidation:        http.StatusBadRequest,
	ErrCodeInvalidTransition: http.StatusBadRequest,
	ErrCodeReasonRequired:    http.StatusBadRequest,
	ErrCodeInvalidStatus:     http.StatusBadRequest,
	ErrCodeInvalidQuantity:   http.StatusBadRequest,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeNotFound: http.StatusNotFound,

	ErrCodeLockedForRefund:     http.StatusConflict,
	ErrCodeItemsStillPending:   http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	shared.ErrNotFound.Code:               ErrCodeNotFound,
	shared.ErrConcurrentModification.Code: ErrCodeConcurrencyConflict,
	shared.ErrInvalidInput.Code:           ErrCodeValidation,
	fulfillment.CodeInvalidTransition:     ErrCodeInvalidTransition,
	fulfillment.CodeReasonRequired:        ErrCodeReasonRequired,
	fulfillment.CodeValidation:            ErrCodeValidation,
	fulfillment.CodeInvalidStatus:         ErrCodeInvalidStatus,
	fulfillment.CodeInvalidQuantity:       ErrCodeInvalidQuantity,
	fulfillment.CodeLockedForRefund:       ErrCodeLockedForRefund,
	fulfillment.CodeItemsStillPending:     ErrCodeItemsStillPending,
}

// NormalizeErrorCode converts a domain error code to its API error code.
// Unknown domain codes collapse to ErrCodeInternal.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return ErrCodeInternal
}

// ErrorResponse represents an error API response with tracing details
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// ErrorBody carries the error details of an ErrorResponse
type ErrorBody struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one failed request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewErrorResponseWithRequestID creates an error response carrying the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: ErrorBody{
			Code:      code,
			Message:   message,
			RequestID: requestID,
			Timestamp: time.Now().UTC(),
		},
	}
}

// NewValidationErrorResponse creates a validation error response with field details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) ErrorResponse {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}
