package common

import (
	"encoding/json"
	"errors"
	"net/http"
)

// AppError carries the API error code and HTTP status alongside the cause.
// Message is what clients see; Err is kept for logs and errors.Is.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

func (e *AppError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Message
	}
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

func fieldDetails(field string) any {
	if field == "" {
		return nil
	}
	return map[string]any{"field": field}
}

// BadRequest builds a 400 pointing at field.
func BadRequest(field, message string, err error) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: message, HTTPStatus: http.StatusBadRequest, Err: err, Details: fieldDetails(field)}
}

// Conflict builds a 409 CONFLICT. field may be empty.
func Conflict(field, message string, err error) *AppError {
	return &AppError{Code: "CONFLICT", Message: message, HTTPStatus: http.StatusConflict, Err: err, Details: fieldDetails(field)}
}

// NotFound builds a 404.
func NotFound(message string, err error) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: message, HTTPStatus: http.StatusNotFound, Err: err}
}

// WriteAppError renders err in the error envelope. Errors that are not an
// AppError become an opaque 500.
func WriteAppError(w http.ResponseWriter, err error) {
	appErr := &AppError{}
	if !errors.As(err, &appErr) {
		JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}
	out := *appErr
	if out.HTTPStatus == 0 {
		out.HTTPStatus = http.StatusInternalServerError
	}
	if out.Code == "" {
		out.Code = "INTERNAL"
	}
	if out.Message == "" {
		out.Message = "internal error"
	}
	if syntaxErr := (*json.SyntaxError)(nil); errors.As(out.Err, &syntaxErr) {
		out.Details = map[string]any{"offset": syntaxErr.Offset}
	}
	JSONError(w, out.HTTPStatus, out.Code, out.Message, out.Details)
}
