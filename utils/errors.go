package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindNotFound      ErrorKind = "not_found"
	KindInvalid       ErrorKind = "invalid"
	KindUnauthorized  ErrorKind = "unauthorized"
	KindAIUnavailable ErrorKind = "ai_unavailable"
	KindRateLimited   ErrorKind = "rate_limited"
	KindTimeout       ErrorKind = "timeout"
)

// AppError is an error the HTTP layer knows how to present to clients.
// Anything that is not an AppError is treated as an internal fault.
type AppError struct {
	Kind       ErrorKind
	Message    string
	RetryAfter int
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NotFound(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func AIUnavailable(err error) *AppError {
	return &AppError{Kind: KindAIUnavailable, Message: "AI service unavailable", Err: err}
}

func RateLimited(retryAfter int) *AppError {
	return &AppError{
		Kind:       KindRateLimited,
		Message:    fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retryAfter),
		RetryAfter: retryAfter,
	}
}

// StatusFor maps err onto an HTTP status and a client-safe message.
// ok is false for internal faults, whose details must not leak.
func StatusFor(err error) (status int, message string, ok bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case KindNotFound:
			return http.StatusNotFound, appErr.Message, true
		case KindInvalid:
			return http.StatusBadRequest, appErr.Message, true
		case KindUnauthorized:
			return http.StatusUnauthorized, appErr.Message, true
		case KindAIUnavailable:
			return http.StatusServiceUnavailable, appErr.Error(), true
		case KindRateLimited:
			return http.StatusTooManyRequests, appErr.Message, true
		case KindTimeout:
			return http.StatusGatewayTimeout, "Request timeout. Please try again.", true
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "Request timeout. Please try again.", true
	}
	return http.StatusInternalServerError, "", false
}
