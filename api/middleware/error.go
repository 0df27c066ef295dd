package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/savitara/dharma-assistant/api/model"
	"github.com/sirupsen/logrus"
)

// Error type constants.
const (
	ErrorTypeValidation = "VALIDATION_ERROR" // invalid input
	ErrorTypeNotFound   = "NOT_FOUND_ERROR"  // missing resource
	ErrorTypeInternal   = "INTERNAL_ERROR"   // server failure
	ErrorTypeBusiness   = "BUSINESS_ERROR"   // domain rule violation
)

// AppError is an error carrying an HTTP status and error type.
type AppError struct {
	Type    string
	Message string
	Details string
	Code    int
}

// Error implements the error interface.
func (e AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewValidationError builds an invalid-input error.
func NewValidationError(message string, details ...string) AppError {
	return AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusBadRequest,
	}
}

// NewNotFoundError builds a missing-resource error.
func NewNotFoundError(message string) AppError {
	return AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
		Code:    http.StatusNotFound,
	}
}

// NewInternalError builds a server failure error.
func NewInternalError(message string, details ...string) AppError {
	return AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusInternalServerError,
	}
}

// ErrorHandler recovers from panics and turns accumulated request
// errors into envelope responses.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(logrus.Fields{
					"panic":    r,
					"path":     c.Request.URL.Path,
					"trace_id": c.GetString("TraceID"),
					"stack":    string(debug.Stack()),
				}).Error("Recovered from panic")

				c.AbortWithStatusJSON(http.StatusInternalServerError, model.NewErrorResponse(
					http.StatusInternalServerError,
					"internal server error",
				))
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		if appErr, ok := err.(AppError); ok {
			log.WithFields(logrus.Fields{
				"error_type": appErr.Type,
				"details":    appErr.Details,
				"path":       c.Request.URL.Path,
				"trace_id":   c.GetString("TraceID"),
			}).Warn(appErr.Message)

			c.JSON(appErr.Code, model.NewErrorResponse(appErr.Code, appErr.Message))
			return
		}

		log.WithFields(logrus.Fields{
			"error":    err.Error(),
			"path":     c.Request.URL.Path,
			"trace_id": c.GetString("TraceID"),
		}).Error("Unhandled request error")

		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"internal server error",
		))
	}
}
