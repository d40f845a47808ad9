package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by how the dashboard has to react to it.
type Kind string

const (
	// KindAuth means the session is missing or invalid: clear state and redirect to login.
	KindAuth Kind = "auth"
	// KindRead means a list/profile fetch failed: render the placeholder and show a non-blocking alert.
	KindRead Kind = "read"
	// KindWrite means a mutation failed: show a blocking alert and leave the view untouched.
	KindWrite Kind = "write"
	// KindRecord means a single record was malformed and skipped.
	KindRecord     Kind = "record"
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
)

// AppError represents an application error
type AppError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status the error maps to.
func (e *AppError) StatusCode() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindAuth:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindRead, KindWrite:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Unauthorized(message string, err error) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{Kind: KindAuth, Message: message, Err: err}
}

func Read(message string, err error) *AppError {
	return &AppError{Kind: KindRead, Message: message, Err: err}
}

// Write builds a write error. status overrides the HTTP status when the backend gave a meaningful one.
func Write(message string, status int, err error) *AppError {
	return &AppError{Kind: KindWrite, Message: message, Status: status, Err: err}
}

func Record(message string, err error) *AppError {
	return &AppError{Kind: KindRecord, Message: message, Err: err}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Err: err}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource), Err: err}
}

// KindOf returns the Kind of the first AppError in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// Is and As re-export the standard helpers so callers need a single import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target interface{}) bool { return errors.As(err, target) }
