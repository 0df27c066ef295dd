package embedding

import "fmt"

// EmbeddingError is the typed error for embedding failures. Callers
// treat any embedding failure as "no embedding available", never as
// fatal.
type EmbeddingError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e EmbeddingError) Error() string {
	return fmt.Sprintf("embedding error (code=%d): %s", e.Code, e.Message)
}

// Error codes.
const (
	ErrCodeInvalidAPIKey  = 3001
	ErrCodeInvalidRequest = 3002
	ErrCodeNetworkError   = 3003
	ErrCodeServerError    = 3004
	ErrCodeTimeout        = 3005
	ErrCodeEmptyText      = 3006
)

// NewEmbeddingError creates a typed embedding error.
func NewEmbeddingError(code int, message string) EmbeddingError {
	return EmbeddingError{Code: code, Message: message}
}
