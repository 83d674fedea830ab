package common

import "net/http"

// AppError is an error that knows how it should be rendered to API clients:
// a stable machine code, a human message, an HTTP status and optional details.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is/As.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithDetails returns a copy of e carrying details.
func (e *AppError) WithDetails(details any) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// BadRequest builds a 400 error pointing at the offending field.
func BadRequest(field, message string, err error) *AppError {
	return &AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
		Details:    map[string]any{"field": field},
	}
}

// NotFound builds a 404 error with the given code, e.g. "CART_NOT_FOUND".
// An empty code means "NOT_FOUND".
func NotFound(code, message string, err error) *AppError {
	if code == "" {
		code = "NOT_FOUND"
	}
	return &AppError{Code: code, Message: message, HTTPStatus: http.StatusNotFound, Err: err}
}

// Conflict builds a 409 error for requests that clash with current state.
func Conflict(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: http.StatusConflict, Err: err}
}

// PayloadTooLarge builds the 413 returned for bodies over limit bytes.
func PayloadTooLarge(limit int64) *AppError {
	return &AppError{
		Code:       "PAYLOAD_TOO_LARGE",
		Message:    "request entity too large",
		HTTPStatus: http.StatusRequestEntityTooLarge,
		Details:    map[string]any{"maxBytes": limit},
	}
}
