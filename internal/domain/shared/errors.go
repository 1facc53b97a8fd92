package shared

import (
	"fmt"

	"github.com/google/uuid"
)

// Error codes shared by every bounded context
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeAlreadyPosted       = "ALREADY_POSTED"
	CodeUnbalanced          = "UNBALANCED"
	CodeAlreadyReversed     = "ALREADY_REVERSED"
	CodeNotPosted           = "NOT_POSTED"
	CodeInvalidState        = "INVALID_STATE"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

// DomainError is a business rule failure surfaced to callers unchanged.
// EntityID names the offending entity when there is one (item, entry, document).
type DomainError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	EntityID string `json:"entity_id,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.EntityID != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.EntityID)
	}
	return e.Message
}

// Is matches any DomainError carrying the same code, so detailed errors
// still satisfy errors.Is against the sentinels below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithEntity returns a copy of the error naming the offending entity
func (e *DomainError) WithEntity(id uuid.UUID) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, EntityID: id.String()}
}

// NewDomainError creates a domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Sentinels for errors.Is
var (
	ErrValidation          = NewDomainError(CodeValidation, "Validation failed")
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrAlreadyPosted       = NewDomainError(CodeAlreadyPosted, "Journal entry is already posted")
	ErrUnbalanced          = NewDomainError(CodeUnbalanced, "Journal entry debits and credits do not balance")
	ErrAlreadyReversed     = NewDomainError(CodeAlreadyReversed, "Journal entry is already reversed")
	ErrNotPosted           = NewDomainError(CodeNotPosted, "Journal entry is not posted")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
)

// NewValidationError reports bad input shape or a missing field
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// NewNotFoundError reports a missing referenced entity
func NewNotFoundError(entity string, id uuid.UUID) *DomainError {
	return &DomainError{
		Code:     CodeNotFound,
		Message:  entity + " not found",
		EntityID: id.String(),
	}
}

// NewInvalidStateError reports an operation that the current state forbids
func NewInvalidStateError(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvalidState, fmt.Sprintf(format, args...))
}
