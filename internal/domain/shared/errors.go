package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so wrapped variants with a
// more specific message still match the package-level sentinels.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Errorf creates a domain error with the code of base and a formatted message
func Errorf(base *DomainError, format string, args ...any) *DomainError {
	return &DomainError{
		Code:    base.Code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrValidation        = NewDomainError("VALIDATION_ERROR", "Validation failed")
	ErrInvalidTransition = NewDomainError("INVALID_STATE", "Status transition not allowed")
	ErrConflict          = NewDomainError("CONFLICT", "Resource was modified by someone else")
	ErrUpstream          = NewDomainError("UPSTREAM_ERROR", "Unable to reach the ERP server")
)
