package domain

import (
	"errors"
	"fmt"
)

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

// Is matches on code and message so wrapped sentinels compare equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
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
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Search pipeline error codes
const (
	ErrCodeEmbeddingFailed       = "EMBEDDING_FAILED"
	ErrCodeSearchFailed          = "SEARCH_FAILED"
	ErrCodeLLMFailed             = "LLM_FAILED"
	ErrCodeInvalidQuery          = "INVALID_QUERY"
	ErrCodeNoEmbeddingsAvailable = "NO_EMBEDDINGS_AVAILABLE"
)

// Validation errors
var (
	ErrInvalidStatus             = NewDomainError(ErrCodeValidation, "invalid status, expected green, yellow or red")
	ErrInvalidEmbeddingJobStatus = NewDomainError(ErrCodeValidation, "invalid embedding job status")
	ErrMissingRequiredField      = NewDomainError(ErrCodeValidation, "missing required field")
	ErrEmptySearchableText       = NewDomainError(ErrCodeValidation, "participant has no searchable text")
)

// Not found errors
var (
	ErrParticipantNotFound  = NewDomainError(ErrCodeNotFound, "participant not found")
	ErrEmbeddingJobNotFound = NewDomainError(ErrCodeNotFound, "embedding job not found")
)

// Search errors
var (
	ErrQueryEmpty             = NewDomainError(ErrCodeInvalidQuery, "query cannot be empty")
	ErrQueryTooLong           = NewDomainError(ErrCodeInvalidQuery, "query exceeds 500 characters")
	ErrNoEmbeddingsAvailable  = NewDomainError(ErrCodeNoEmbeddingsAvailable, "no participant embeddings available, run embedding generation first")
	ErrStorageOperationFailed = NewDomainError(ErrCodeInternalError, "storage operation failed")
)

// ErrorCode returns the domain code carried by err, or "" for foreign errors.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
