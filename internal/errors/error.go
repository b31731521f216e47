package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryReactivity Category = "reactivity"
	CategoryReconcile  Category = "reconcile"
	CategoryConfig     Category = "config"
	CategoryWire       Category = "wire"
	CategoryCLI        Category = "cli"
)

// LuxError is a structured error with a registered code and an optional hint.
type LuxError struct {
	// Code is a unique error identifier (e.g., "L001").
	Code string

	// Category is the error type (reactivity, reconcile, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Source names the file or component the error refers to, if any.
	Source string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *LuxError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *LuxError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *LuxError) WithSuggestion(s string) *LuxError {
	e.Suggestion = s
	return e
}

// WithDetail replaces the registered explanation.
func (e *LuxError) WithDetail(d string) *LuxError {
	e.Detail = d
	return e
}

// WithSource records the file or component the error refers to.
func (e *LuxError) WithSource(src string) *LuxError {
	e.Source = src
	return e
}

// Wrap wraps another error.
func (e *LuxError) Wrap(err error) *LuxError {
	e.Wrapped = err
	return e
}

// New creates a LuxError from a registered error code.
func New(code string) *LuxError {
	template, ok := registry[code]
	if !ok {
		return &LuxError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &LuxError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Hint,
	}
}

// Newf creates a new LuxError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *LuxError {
	return &LuxError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a LuxError.
// Errors that already carry a code are returned unchanged.
func FromError(err error, code string) *LuxError {
	if err == nil {
		return nil
	}
	var le *LuxError
	if stderrors.As(err, &le) {
		return le
	}
	return New(code).Wrap(err)
}

// CodeOf returns the code of the first LuxError in err's chain, or "".
func CodeOf(err error) string {
	var le *LuxError
	if stderrors.As(err, &le) {
		return le.Code
	}
	return ""
}
