package dto

import (
	"net/http"
	"strings"
)

// API error codes. Domain errors are translated to these by NormalizeErrorCode.
const (
	ErrCodeInternal = "ERR_INTERNAL"

	// Request shape
	ErrCodeValidation       = "ERR_VALIDATION"
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	ErrCodeInvalidInput     = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON      = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge  = "ERR_REQUEST_TOO_LARGE"

	// Resources
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	// Allocation and reconciliation rules
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeInvalidTransition = "ERR_INVALID_TRANSITION"
	ErrCodeNoCandidatePool   = "ERR_NO_CANDIDATE_POOL"
	ErrCodeZeroBasis         = "ERR_ZERO_BASIS"
	ErrCodeDirectionMismatch = "ERR_DIRECTION_MISMATCH"
	ErrCodeEmptyEntitySet    = "ERR_EMPTY_ENTITY_SET"

	// Replays of an operation that already took effect
	ErrCodeAlreadyPosted     = "ERR_ALREADY_POSTED"
	ErrCodeAlreadyReconciled = "ERR_ALREADY_RECONCILED"
)

// errorCode ties an API code to its HTTP status and, when the domain raises
// it, to the domain code it is translated from
type errorCode struct {
	api    string
	domain string
	status int
}

var errorCodes = []errorCode{
	{ErrCodeInternal, "INTERNAL_ERROR", http.StatusInternalServerError},

	{ErrCodeValidation, "VALIDATION_ERROR", http.StatusBadRequest},
	{ErrCodeValidationFormat, "", http.StatusBadRequest},
	{ErrCodeInvalidInput, "INVALID_INPUT", http.StatusBadRequest},
	{ErrCodeInvalidJSON, "", http.StatusBadRequest},
	{ErrCodeRequestTooLarge, "", http.StatusRequestEntityTooLarge},

	{ErrCodeNotFound, "NOT_FOUND", http.StatusNotFound},
	{ErrCodeAlreadyExists, "ALREADY_EXISTS", http.StatusConflict},
	{ErrCodeConcurrencyConflict, "CONCURRENCY_CONFLICT", http.StatusConflict},

	{ErrCodeInvalidState, "INVALID_STATE", http.StatusUnprocessableEntity},
	{ErrCodeInvalidTransition, "INVALID_TRANSITION", http.StatusUnprocessableEntity},
	{ErrCodeNoCandidatePool, "NO_CANDIDATE_POOL", http.StatusUnprocessableEntity},
	{ErrCodeZeroBasis, "ZERO_BASIS", http.StatusUnprocessableEntity},
	{ErrCodeDirectionMismatch, "DIRECTION_MISMATCH", http.StatusUnprocessableEntity},
	{ErrCodeEmptyEntitySet, "EMPTY_ENTITY_SET", http.StatusUnprocessableEntity},

	{ErrCodeAlreadyPosted, "ALREADY_POSTED", http.StatusConflict},
	{ErrCodeAlreadyReconciled, "ALREADY_RECONCILED", http.StatusConflict},
}

var (
	statusByCode = make(map[string]int, len(errorCodes))
	apiByDomain  = make(map[string]string, len(errorCodes))
)

func init() {
	for _, ec := range errorCodes {
		statusByCode[ec.api] = ec.status
		if ec.domain != "" {
			apiByDomain[ec.domain] = ec.api
		}
	}
}

// fieldCodePrefix marks field-level domain codes such as INVALID_QUANTITY
// or INVALID_LOT_CODE, raised by value objects and constructors
const fieldCodePrefix = "INVALID_"

// GetHTTPStatus returns the HTTP status for an API code. Field-level
// INVALID_* codes are client errors; any other unknown code is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	if strings.HasPrefix(code, fieldCodePrefix) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode translates a domain code to its API code. API codes and
// field-level codes pass through unchanged.
func NormalizeErrorCode(code string) string {
	if api, ok := apiByDomain[code]; ok {
		return api
	}
	return code
}
