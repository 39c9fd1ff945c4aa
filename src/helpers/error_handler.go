package helpers

import (
	"errors"
	"fmt"
	"stock-predictor/src/logger"
	"sync"
)

// ErrNoData marks a fetch that produced no rows, whatever the reason.
var ErrNoData = errors.New("no data")

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type AppError struct {
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As checks at the surfaces.
type ConfigurationError struct{ AppError }
type NetworkError struct{ AppError }
type DataSourceError struct{ AppError }
type ForecastError struct{ AppError }
type ValidationError struct{ AppError }

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewConfigurationError(msg string, cause error) error {
	return &ConfigurationError{AppError{Message: msg, Cause: cause}}
}

func NewNetworkError(msg string, cause error) error {
	return &NetworkError{AppError{Message: msg, Cause: cause}}
}

func NewDataSourceError(msg string, cause error) error {
	return &DataSourceError{AppError{Message: msg, Cause: cause}}
}

func NewForecastError(msg string, cause error) error {
	return &ForecastError{AppError{Message: msg, Cause: cause}}
}

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{AppError{Message: fmt.Sprintf(format, args...)}}
}

// -----------------------------------------------------------------------------

// IsValidation reports whether err (or anything it wraps) is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger *logger.Logger

	mu    sync.Mutex
	count int
}

func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{
		Logger: logger.NewLogger(nil, "ErrorHandler"),
	}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) Handle(err error, context string) {
	if err != nil {
		e.mu.Lock()
		e.count++
		e.mu.Unlock()
		e.Logger.Error("Error in %s: %v", context, err)
	}
}

// ErrorCount returns how many errors were handled so far.
func (e *ErrorHandler) ErrorCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}
