package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cloo-solutions/communityos/internal/domain"
)

// SuccessResponse wraps successful API responses
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Success writes a successful JSON response
func Success(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, SuccessResponse{Data: data})
}

// Error writes an error JSON response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message, Code: defaultCode(status)})
}

// DomainErrorToHTTP maps domain errors to HTTP status codes
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError
	}

	switch domainErr.Code {
	case domain.ErrCodeValidation, domain.ErrCodeInvalidQuery, domain.ErrCodeInvalidOperation:
		return http.StatusBadRequest
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeAlreadyExists:
		return http.StatusConflict
	case domain.ErrCodeNoEmbeddingsAvailable:
		return http.StatusServiceUnavailable
	case domain.ErrCodeEmbeddingFailed, domain.ErrCodeLLMFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes an error response carrying the domain code, if any.
func HandleError(w http.ResponseWriter, err error) {
	status := DomainErrorToHTTP(err)

	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		JSON(w, status, ErrorResponse{Error: err.Error(), Code: domain.ErrCodeInternalError})
		return
	}

	resp := ErrorResponse{Error: domainErr.Message, Code: domainErr.Code}
	if domainErr.Err != nil {
		resp.Details = domainErr.Err.Error()
	}
	JSON(w, status, resp)
}

func defaultCode(status int) string {
	switch {
	case status == http.StatusNotFound:
		return domain.ErrCodeNotFound
	case status >= 500:
		return domain.ErrCodeInternalError
	case status >= 400:
		return domain.ErrCodeValidation
	}
	return ""
}
