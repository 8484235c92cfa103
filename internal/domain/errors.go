package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeAlreadyExists  = "ALREADY_EXISTS"
	ErrCodeUnavailable    = "UNAVAILABLE"
	ErrCodeUpstream       = "UPSTREAM_ERROR"
	ErrCodeDegenerateInput = "DEGENERATE_INPUT"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidChunkOverlap  = NewDomainError(ErrCodeValidation, "chunk overlap must be smaller than chunk size")
	ErrInvalidChunkSize     = NewDomainError(ErrCodeValidation, "chunk size must be positive")
	ErrInvalidMaxChunkSize  = NewDomainError(ErrCodeValidation, "max chunk size must be positive")
	ErrInvalidResultCount   = NewDomainError(ErrCodeValidation, "result count must be a positive integer")
	ErrUnknownChunkStrategy = NewDomainError(ErrCodeValidation, "unknown chunk strategy")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrDomainNotFound   = NewDomainError(ErrCodeNotFound, "domain not found")
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
	ErrItemNotFound     = NewDomainError(ErrCodeNotFound, "storage item not found")
)

// Already exists errors
var (
	ErrDomainAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "domain already exists")
)

// Unavailable errors
var (
	ErrNoVectorStore = NewDomainError(ErrCodeUnavailable, "no vector store configured for domain")
)

// Degenerate input errors
var (
	ErrEmptyContent      = NewDomainError(ErrCodeDegenerateInput, "document content is empty")
	ErrEmptySentenceList = NewDomainError(ErrCodeDegenerateInput, "no sentences in content")
)

// NewValidationError builds a validation error with a formatted message.
func NewValidationError(format string, args ...interface{}) *DomainError {
	return NewDomainError(ErrCodeValidation, fmt.Sprintf(format, args...))
}

// NewUpstreamError wraps a failed external call (embedding, chat, vector store).
func NewUpstreamError(operation string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeUpstream, operation+" failed", err)
}
