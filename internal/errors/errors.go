package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeDatabase   ErrorType = "database"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents an application error with additional context
type AppError struct {
	Type     ErrorType
	Message  string
	Code     string
	Internal error
	Context  map[string]interface{}
	Source   string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the internal error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return errors.Is(e.Internal, target)
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// LogFields returns structured logging fields
func (e *AppError) LogFields() []interface{} {
	fields := []interface{}{
		"error_type", e.Type,
		"error_code", e.Code,
		"error_message", e.Message,
		"source", e.Source,
	}

	if e.Internal != nil {
		fields = append(fields, "internal_error", e.Internal.Error())
	}

	for k, v := range e.Context {
		fields = append(fields, k, v)
	}

	return fields
}

// New creates a new AppError
func New(errorType ErrorType, code, message string) *AppError {
	_, file, line, _ := runtime.Caller(1)
	source := fmt.Sprintf("%s:%d", file, line)

	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Source:  source,
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error into AppError
func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	_, file, line, _ := runtime.Caller(1)
	source := fmt.Sprintf("%s:%d", file, line)

	return &AppError{
		Type:     errorType,
		Code:     code,
		Message:  message,
		Internal: err,
		Source:   source,
		Context:  make(map[string]interface{}),
	}
}

// Handler provides error handling strategies
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle processes an error according to its type
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		h.logger.ErrorContext(ctx, "Unhandled error", "error", err.Error())
		return
	}

	switch appErr.Type {
	case ErrorTypeValidation, ErrorTypeNotFound:
		h.logger.WarnContext(ctx, "Rejected input", appErr.LogFields()...)
	case ErrorTypeDatabase, ErrorTypeInternal:
		h.logger.ErrorContext(ctx, "Critical error", appErr.LogFields()...)
	default:
		h.logger.ErrorContext(ctx, "Unknown error type", appErr.LogFields()...)
	}
}

// Predefined errors
var (
	ErrInvalidReading     = New(ErrorTypeValidation, "INVALID_READING", "Invalid glucose reading input")
	ErrPatientNotFound    = New(ErrorTypeNotFound, "PATIENT_NOT_FOUND", "Patient not found")
	ErrRepositoryFailure  = New(ErrorTypeDatabase, "REPOSITORY_FAILURE", "Repository operation failed")
	ErrInvalidGoal        = New(ErrorTypeValidation, "INVALID_GOAL", "Invalid goal definition")
	ErrInvalidTargetRange = New(ErrorTypeValidation, "INVALID_TARGET_RANGE", "Invalid target range")
	ErrImplausibleValue   = New(ErrorTypeValidation, "IMPLAUSIBLE_VALUE", "Glucose value outside plausible range")
)

// NewInvalidReading creates an InvalidReading error with a specific reason.
func NewInvalidReading(reason string) *AppError {
	return New(ErrorTypeValidation, "INVALID_READING", reason)
}

// NewValidationError creates a generic validation error.
func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, "VALIDATION", message)
}

// NewDatabaseError wraps a storage boundary failure. The core never retries
// these: a reading insert is not idempotent and a blind retry could
// duplicate readings.
func NewDatabaseError(err error) *AppError {
	return Wrap(err, ErrorTypeDatabase, "REPOSITORY_FAILURE", "Repository operation failed")
}

// NewNotFoundError creates a not found error for a named resource.
func NewNotFoundError(resource, name string) *AppError {
	return New(ErrorTypeNotFound, "NOT_FOUND", fmt.Sprintf("%s not found: %s", resource, name)).
		WithContext("resource", resource)
}

// NewPatientNotFound creates a patient lookup failure that matches
// ErrPatientNotFound under errors.Is.
func NewPatientNotFound(name string) *AppError {
	return New(ErrorTypeNotFound, "PATIENT_NOT_FOUND", fmt.Sprintf("patient not found: %s", name)).
		WithContext("name", name)
}
