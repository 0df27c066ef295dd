package knowledge

import "fmt"

// KnowledgeError is the typed error for external lookup failures.
type KnowledgeError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e KnowledgeError) Error() string {
	return fmt.Sprintf("knowledge error (code=%d): %s", e.Code, e.Message)
}

// Error codes.
const (
	ErrCodeInvalidAPIKey   = 2001 // missing or rejected API key
	ErrCodeInvalidRequest  = 2002 // malformed request
	ErrCodeNetworkError    = 2003 // transport failure
	ErrCodeRateLimited     = 2004 // upstream rate limit
	ErrCodeServerError     = 2005 // upstream server error
	ErrCodeTimeout         = 2006 // request timed out
	ErrCodeEmptyQuestion   = 2007 // empty question
	ErrCodeEmptyAnswer     = 2008 // upstream returned no content
	ErrCodeAllModelsFailed = 2009 // every model in the fallback list failed
)

// Error messages.
const (
	ErrMsgInvalidAPIKey   = "invalid API key"
	ErrMsgEmptyQuestion   = "question cannot be empty"
	ErrMsgEmptyAnswer     = "upstream returned an empty answer"
	ErrMsgAllModelsFailed = "all fallback models failed"
)

// NewKnowledgeError creates a typed knowledge error.
func NewKnowledgeError(code int, message string) KnowledgeError {
	return KnowledgeError{Code: code, Message: message}
}

// WrapError converts a plain error into a KnowledgeError, passing
// through errors that already carry a code.
func WrapError(err error, code int) KnowledgeError {
	if err == nil {
		return KnowledgeError{Code: code, Message: "unknown error"}
	}
	if kerr, ok := err.(KnowledgeError); ok {
		return kerr
	}
	return KnowledgeError{Code: code, Message: err.Error()}
}
