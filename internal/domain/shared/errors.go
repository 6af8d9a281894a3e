package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError carrying the same code, so a
// detailed error built from a sentinel's code still matches the sentinel.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Errorf creates a domain error with a formatted message
func Errorf(code, format string, args ...any) *DomainError {
	return NewDomainError(code, fmt.Sprintf(format, args...))
}

// WithMessagef returns a copy of e carrying a more specific message. The
// copy still matches e under errors.Is.
func (e *DomainError) WithMessagef(format string, args ...any) *DomainError {
	return Errorf(e.Code, format, args...)
}

// IsDomainError reports whether err is a DomainError with the given code
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Engine errors. All are recoverable at the call site.
var (
	ErrNoCandidatePool   = NewDomainError("NO_CANDIDATE_POOL", "No eligible participants to allocate the cost to")
	ErrZeroBasis         = NewDomainError("ZERO_BASIS", "Allocation basis totals zero")
	ErrAlreadyReconciled = NewDomainError("ALREADY_RECONCILED", "Statement entry is already reconciled")
	ErrDirectionMismatch = NewDomainError("DIRECTION_MISMATCH", "Statement direction does not match account direction")
	ErrEmptyEntitySet    = NewDomainError("EMPTY_ENTITY_SET", "No qualifying lots for the requested entity and period")
	ErrInvalidTransition = NewDomainError("INVALID_TRANSITION", "Status transition not allowed")
	ErrAlreadyPosted     = NewDomainError("ALREADY_POSTED", "Cost origin has already been posted")
)
