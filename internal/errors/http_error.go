package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// Helper for common errors
var (
	ErrUnauthorized = func(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, msg) }
)

var (
	ErrNotFound     = stderrors.New("not found")
	ErrSlotTaken    = stderrors.New("slot is no longer available")
	ErrCancelWindow = stderrors.New("booking can no longer be cancelled")
	ErrWeekLocked   = stderrors.New("week is locked until the previous week is complete")
	ErrUnknownDrill = stderrors.New("unknown drill")
)

// ValidationError reports bad client input. It is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// DataAccessError wraps a storage failure. The request that hit it fails as a whole.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("data access (%s): %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

func NewDataAccessError(op string, err error) *DataAccessError {
	return &DataAccessError{Op: op, Err: err}
}

// StatusCode maps an error to the HTTP status the API responds with.
func StatusCode(err error) int {
	var httpErr *HTTPError
	var vErr *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.As(err, &httpErr):
		return httpErr.Code
	case stderrors.As(err, &vErr):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrNotFound), stderrors.Is(err, ErrUnknownDrill):
		return http.StatusNotFound
	case stderrors.Is(err, ErrSlotTaken), stderrors.Is(err, ErrCancelWindow), stderrors.Is(err, ErrWeekLocked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text safe to show a client for err.
func PublicMessage(err error) string {
	var httpErr *HTTPError
	var vErr *ValidationError
	var dErr *DataAccessError
	switch {
	case stderrors.As(err, &httpErr):
		return httpErr.Message
	case stderrors.As(err, &vErr):
		return vErr.Error()
	case stderrors.Is(err, ErrNotFound), stderrors.Is(err, ErrSlotTaken), stderrors.Is(err, ErrCancelWindow),
		stderrors.Is(err, ErrWeekLocked), stderrors.Is(err, ErrUnknownDrill):
		return err.Error()
	case stderrors.As(err, &dErr):
		return "unable to load data, please try again"
	default:
		return "internal server error"
	}
}
