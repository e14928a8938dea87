package errors

import (
	"fmt"
	"log/slog"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	// Bad input from the caller (extension, empty payload, bad model name)
	ErrTypeInvalidArgument ErrorType = "invalid_argument"
	// A referenced entity does not exist (entry, session, audio file)
	ErrTypeNotFound ErrorType = "not_found"
	// An entity exists but is not in a usable state (session without audio)
	ErrTypeInvalidState ErrorType = "invalid_state"
	// A collaborator (model, transcoder) is unreachable or failed
	ErrTypeUnavailable ErrorType = "unavailable"
	// File system errors
	ErrTypeFileSystem ErrorType = "filesystem"
	// Generic application errors
	ErrTypeApp ErrorType = "application"
)

// AppError represents a structured application error
type AppError struct {
	Type        ErrorType              `json:"type"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	InternalErr error                  `json:"-"`
	Context     map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.InternalErr != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.InternalErr)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// Unwrap exposes the wrapped error to errors.Is/As
func (e *AppError) Unwrap() error {
	return e.InternalErr
}

// WithContext returns a copy of the error with context information added.
// Copying keeps the predefined errors safe to annotate per request.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	clone := *e
	clone.Context = make(map[string]interface{}, len(e.Context)+1)
	for k, v := range e.Context {
		clone.Context[k] = v
	}
	clone.Context[key] = value
	return &clone
}

// HTTPStatus maps the error category to an HTTP response code
func (e *AppError) HTTPStatus() int {
	switch e.Type {
	case ErrTypeInvalidArgument, ErrTypeInvalidState:
		return http.StatusBadRequest
	case ErrTypeNotFound:
		return http.StatusNotFound
	case ErrTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Log logs the error with its context attached
func (e *AppError) Log(logger *slog.Logger) {
	attrs := []any{"type", string(e.Type), "code", e.Code}
	for k, v := range e.Context {
		attrs = append(attrs, k, v)
	}
	logger.Error(e.Error(), attrs...)
}

// New creates a new AppError
func New(errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:        errType,
		Code:        code,
		Message:     message,
		InternalErr: err,
	}
}

// InvalidArgument builds a caller-input error with a formatted message
func InvalidArgument(code, format string, args ...interface{}) *AppError {
	return New(ErrTypeInvalidArgument, code, fmt.Sprintf(format, args...))
}

// NotFound builds a missing-entity error
func NotFound(code, format string, args ...interface{}) *AppError {
	return New(ErrTypeNotFound, code, fmt.Sprintf(format, args...))
}

// InvalidState builds an unusable-entity error
func InvalidState(code, format string, args ...interface{}) *AppError {
	return New(ErrTypeInvalidState, code, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether err is an AppError of the not_found category
func IsNotFound(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == ErrTypeNotFound
}

// Predefined errors for common scenarios
var (
	ErrEntryNotFound = New(ErrTypeNotFound, "ENTRY_NOT_FOUND", "entry not found")

	ErrSessionNotFound = New(ErrTypeNotFound, "SESSION_NOT_FOUND", "session not found")

	ErrAudioNotFound = New(ErrTypeNotFound, "AUDIO_NOT_FOUND", "audio file not found")

	ErrSessionEmpty = New(ErrTypeInvalidState, "SESSION_EMPTY", "no audio found for this session")

	ErrEmptyPayload = New(ErrTypeInvalidArgument, "EMPTY_PAYLOAD", "empty upload payload")

	ErrInvalidSessionID = New(ErrTypeInvalidArgument, "INVALID_SESSION_ID", "invalid session_id")
)
