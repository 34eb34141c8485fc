package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindForbidden        Kind = "FORBIDDEN"
	KindConflict         Kind = "CONFLICT"
	KindValidationFailed Kind = "VALIDATION_FAILED"
	KindUserNotFound     Kind = "USER_NOT_FOUND"
	KindInternal         Kind = "INTERNAL"
)

// AppError is the structured error every service operation returns.
type AppError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches on kind so callers can write errors.Is(err, apperror.ErrForbidden).
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound         = &AppError{Kind: KindNotFound}
	ErrForbidden        = &AppError{Kind: KindForbidden}
	ErrConflict         = &AppError{Kind: KindConflict}
	ErrValidationFailed = &AppError{Kind: KindValidationFailed}
	ErrUserNotFound     = &AppError{Kind: KindUserNotFound}
	ErrInternal         = &AppError{Kind: KindInternal}
)

func New(kind Kind, message string) error {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) error {
	return &AppError{Kind: kind, Message: message, Cause: cause}
}

func NotFound(msg string) error         { return New(KindNotFound, msg) }
func Forbidden(msg string) error        { return New(KindForbidden, msg) }
func Conflict(msg string) error         { return New(KindConflict, msg) }
func ValidationFailed(msg string) error { return New(KindValidationFailed, msg) }
func UserNotFound(msg string) error     { return New(KindUserNotFound, msg) }

func Internal(msg string, cause error) error {
	return Wrap(KindInternal, msg, cause)
}

// KindOf returns the kind of the first AppError in the chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound, KindUserNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindValidationFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
