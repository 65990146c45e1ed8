// Package errcode provides layered error codes for the HTTP-facing surface
// Error code format: MMBBBB (MM = module code 2 digits, BBBB = business code 4 digits)
package errcode

import (
	"errors"
	"fmt"
	"net/http"
)

// LayeredError layered error code
// Supports: error chaining, dynamic messages, context data, HTTP status mapping
type LayeredError struct {
	module     string         // module name (container, config, server)
	code       int            // complete code (MMBBBB, e.g. 100001)
	msg        string         // default message
	httpStatus int            // HTTP status code
	data       map[string]any // context data
	cause      error          // original error (error chain)
}

// New creates a layered error code
// moduleCode: module code (10-99)
// businessCode: business code (0001-9999)
func New(moduleCode, businessCode int, module, msg string, httpStatus ...int) *LayeredError {
	status := http.StatusInternalServerError
	if len(httpStatus) > 0 {
		status = httpStatus[0]
	}
	return &LayeredError{
		module:     module,
		code:       moduleCode*10000 + businessCode,
		msg:        msg,
		httpStatus: status,
		data:       make(map[string]any),
	}
}

// Error implements the error interface
func (e *LayeredError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Code returns the complete error code
func (e *LayeredError) Code() int {
	return e.code
}

// Module returns the module name
func (e *LayeredError) Module() string {
	return e.module
}

// Message returns the error message
func (e *LayeredError) Message() string {
	return e.msg
}

// HTTPStatus returns the mapped HTTP status code
func (e *LayeredError) HTTPStatus() int {
	return e.httpStatus
}

// Data returns the context data
func (e *LayeredError) Data() map[string]any {
	return e.data
}

// Unwrap supports Go 1.13+ error chains
func (e *LayeredError) Unwrap() error {
	return e.cause
}

// Is two layered errors are equal when their codes match
func (e *LayeredError) Is(target error) bool {
	var le *LayeredError
	if errors.As(target, &le) {
		return e.code == le.code
	}
	return false
}

// WithMsg replaces the message (returns a new instance)
func (e *LayeredError) WithMsg(msg string) *LayeredError {
	clone := *e
	clone.msg = msg
	return &clone
}

// WithMsgf formats and replaces the message (returns a new instance)
func (e *LayeredError) WithMsgf(format string, args ...any) *LayeredError {
	clone := *e
	clone.msg = fmt.Sprintf(format, args...)
	return &clone
}

// WithData adds one context entry (returns a new instance)
func (e *LayeredError) WithData(key string, value any) *LayeredError {
	clone := *e
	clone.data = make(map[string]any, len(e.data)+1)
	for k, v := range e.data {
		clone.data[k] = v
	}
	clone.data[key] = value
	return &clone
}

// WithCause attaches the original error (returns a new instance)
func (e *LayeredError) WithCause(cause error) *LayeredError {
	clone := *e
	clone.cause = cause
	return &clone
}

// FromError converts any error to a *LayeredError
// Already-layered errors pass through; everything else becomes ErrInternal
func FromError(err error) *LayeredError {
	if err == nil {
		return nil
	}
	var le *LayeredError
	if errors.As(err, &le) {
		return le
	}
	return ErrInternal.WithCause(err)
}
