package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ErrorType classifies collaborator failures.
type ErrorType string

const (
	ErrorTypeAuth     ErrorType = "auth"
	ErrorTypeEndpoint ErrorType = "endpoint"
	ErrorTypeModel    ErrorType = "model"
	ErrorTypeTimeout  ErrorType = "timeout"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// Error represents a structured LLM error with classification.
type Error struct {
	Type       ErrorType // Classification of the error
	Message    string    // Human-readable message
	Retryable  bool      // Whether the operation can be retried
	Cause      error     // Underlying error
	StatusCode int       // HTTP status code if applicable
	Model      string    // Model name if known
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Type))

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	if e.Model != "" {
		parts = append(parts, fmt.Sprintf("model=%s", e.Model))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether the operation can be retried.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// classifyOpenAIError converts a go-openai error into a structured Error.
func classifyOpenAIError(err error, model string) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		e := &Error{
			Cause:      err,
			StatusCode: apiErr.HTTPStatusCode,
			Model:      model,
			Message:    apiErr.Message,
		}
		switch {
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			e.Type = ErrorTypeAuth
		case apiErr.HTTPStatusCode == 404:
			e.Type = ErrorTypeModel
		case apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500:
			e.Type = ErrorTypeEndpoint
			e.Retryable = true
		default:
			e.Type = ErrorTypeUnknown
		}
		return e
	}

	if strings.Contains(err.Error(), "context deadline exceeded") {
		return &Error{Type: ErrorTypeTimeout, Message: "request timed out", Retryable: true, Cause: err, Model: model}
	}

	return &Error{Type: ErrorTypeUnknown, Message: "request failed", Retryable: true, Cause: err, Model: model}
}
