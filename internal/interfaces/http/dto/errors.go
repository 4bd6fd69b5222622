package dto

import (
	"net/http"
	"strings"
)

// General error codes produced by the HTTP layer itself
const (
	// ErrCodeInternal is used for unexpected server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when the body cannot be decoded
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodeInvalidID is used when a path id is not a UUID
	ErrCodeInvalidID = "INVALID_ID"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeRenderFailed is used when a document could not be rendered or stored
	ErrCodeRenderFailed = "RENDER_FAILED"
)

// Domain error codes. They reach clients unchanged.
const (
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeAlreadyExists          = "ALREADY_EXISTS"
	ErrCodeInvalidInput           = "INVALID_INPUT"
	ErrCodeInvalidState           = "INVALID_STATE"
	ErrCodeConcurrencyConflict    = "CONCURRENCY_CONFLICT"
	ErrCodeInvalidAmount          = "INVALID_AMOUNT"
	ErrCodeInvalidDate            = "INVALID_DATE"
	ErrCodeInvalidReceiptParams   = "INVALID_RECEIPT_PARAMS"
	ErrCodeInvalidSignatureParams = "INVALID_SIGNATURE_PARAMS"
	ErrCodeAlreadySigned          = "ALREADY_SIGNED"
	ErrCodeAlreadyCancelled       = "ALREADY_CANCELLED"
	ErrCodeHashComputationFailure = "HASH_COMPUTATION_FAILURE"
	ErrCodeHashComputationTimeout = "HASH_COMPUTATION_TIMEOUT"
	ErrCodePDFDisabled            = "PDF_DISABLED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeInvalidID:       http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRenderFailed:    http.StatusBadGateway,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Input errors -> 400 Bad Request
	ErrCodeInvalidInput:           http.StatusBadRequest,
	ErrCodeInvalidAmount:          http.StatusBadRequest,
	ErrCodeInvalidDate:            http.StatusBadRequest,
	ErrCodeInvalidReceiptParams:   http.StatusBadRequest,
	ErrCodeInvalidSignatureParams: http.StatusBadRequest,

	// Lifecycle rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:     http.StatusUnprocessableEntity,
	ErrCodeAlreadySigned:    http.StatusUnprocessableEntity,
	ErrCodeAlreadyCancelled: http.StatusUnprocessableEntity,

	// Hashing
	ErrCodeHashComputationFailure: http.StatusInternalServerError,
	ErrCodeHashComputationTimeout: http.StatusGatewayTimeout,

	ErrCodePDFDisabled: http.StatusNotImplemented,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown INVALID_* codes are client errors; anything else unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
