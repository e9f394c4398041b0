// Package errors defines the three error taxonomies the gateway uses to
// decide an HTTP status, a log level, and whether a failure is retryable.
package errors

import (
	"fmt"
	"net/http"
)

// RequestError represents a client-caused failure: an invalid token, a
// missing source file, or an unsupported source format. Never retried,
// never logged above WARN.
type RequestError struct {
	Status int
	Msg    string
}

func NewRequestError(status int, format string, args ...interface{}) *RequestError {
	return &RequestError{Status: status, Msg: fmt.Sprintf(format, args...)}
}

func (e *RequestError) Error() string { return e.Msg }

func (e *RequestError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusBadRequest
	}
	return e.Status
}

// Common constructors mirroring the response-code table.
func ErrForbidden(format string, args ...interface{}) *RequestError {
	return NewRequestError(http.StatusForbidden, format, args...)
}

func ErrNotFound(format string, args ...interface{}) *RequestError {
	return NewRequestError(http.StatusNotFound, format, args...)
}

func ErrBadRequest(format string, args ...interface{}) *RequestError {
	return NewRequestError(http.StatusBadRequest, format, args...)
}

// PipelineError represents a failure inside the imaging pipeline: a
// corrupt source, a libvips save error, a converter crash. Always a 500,
// always logged at ERROR with the stage and source path attached.
type PipelineError struct {
	Stage  string
	Source string
	Cause  error
}

func NewPipelineError(stage, source string, cause error) *PipelineError {
	return &PipelineError{Stage: stage, Source: source, Cause: cause}
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Source, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Source)
}

func (e *PipelineError) Unwrap() error { return e.Cause }

func (e *PipelineError) HTTPStatus() int { return http.StatusInternalServerError }

// CacheError represents a failure writing or reading the derivative
// store: a permission error, a disk-full condition, an index-write
// failure. Index and converted-document write failures are logged at the
// call site and swallowed; a failed derivative write is wrapped by the
// pipeline into a PipelineError, since there is then nothing to serve.
type CacheError struct {
	Op    string
	Path  string
	Cause error
}

func NewCacheError(op, path string, cause error) *CacheError {
	return &CacheError{Op: op, Path: path, Cause: cause}
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.Path, e.Cause)
}

func (e *CacheError) Unwrap() error { return e.Cause }

// HTTPStatuser is implemented by both RequestError and PipelineError so
// the gin error-mapping middleware can treat them uniformly.
type HTTPStatuser interface {
	error
	HTTPStatus() int
}
