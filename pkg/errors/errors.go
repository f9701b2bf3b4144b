package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeAuthRequired       Code = "AUTH_REQUIRED"
	CodeUnauthorizedAccess Code = "UNAUTHORIZED_ACCESS"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeInvalidToken       Code = "INVALID_TOKEN"
	CodeTokenNotFound      Code = "TOKEN_NOT_FOUND"

	CodeAccountNotVerified Code = "ACCOUNT_NOT_VERIFIED"
	CodeAccountDeactivated Code = "ACCOUNT_DEACTIVATED"
	CodeUserNotFound       Code = "USER_NOT_FOUND"
	CodeInvalidPassword    Code = "INVALID_PASSWORD"
	CodeServerError        Code = "SERVER_ERROR"

	CodeInvalidCode           Code = "INVALID_CODE"
	CodeMaxAttemptsExceeded   Code = "MAX_ATTEMPTS_EXCEEDED"
	CodeInvalidOrExpiredToken Code = "INVALID_OR_EXPIRED_TOKEN"

	CodeUnknown Code = "UNKNOWN_ERROR"

	// client-side codes, never sent by the server
	CodeAborted     Code = "REQUEST_ABORTED"
	CodeNetwork     Code = "NETWORK_ERROR"
	CodeValidation  Code = "VALIDATION_ERROR"
	CodeDecode      Code = "DECODE_ERROR"
	CodeRateLimited Code = "RATE_LIMITED"
)

type Error struct {
	code    Code
	message string
	status  int
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeUnknown
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Status is the HTTP status that produced the error, 0 when no response was received.
func (e *Error) Status() int {
	if e == nil {
		return 0
	}
	return e.status
}

func (e *Error) WithStatus(status int) *Error {
	if e == nil {
		return nil
	}
	e.status = status
	return e
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// Normalize converts any error into an *Error so callers can rely on Code and Message.
func Normalize(err error, fallback string) *Error {
	if err == nil {
		return nil
	}
	if typed := As(err); typed != nil {
		if typed.message == "" {
			typed.message = fallback
		}
		if typed.code == "" {
			typed.code = CodeUnknown
		}
		return typed
	}
	if stdErrors.Is(err, context.Canceled) {
		return Wrap(CodeAborted, err, "request canceled")
	}
	return Wrap(CodeUnknown, err, fallback)
}

// IsAborted reports whether err represents a canceled request rather than a failure.
func IsAborted(err error) bool {
	if err == nil {
		return false
	}
	if typed := As(err); typed != nil && typed.code == CodeAborted {
		return true
	}
	return stdErrors.Is(err, context.Canceled)
}
