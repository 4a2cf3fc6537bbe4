package errx

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the machine readable error code surfaced in the chat envelope.
type Code string

const (
	CodeInputInvalid          Code = "INPUT_INVALID"
	CodeContentBlocked        Code = "CONTENT_BLOCKED"
	CodeRateLimited           Code = "RATE_LIMITED"
	CodeCircuitOpen           Code = "CIRCUIT_OPEN"
	CodeProviderFailure       Code = "PROVIDER_FAILURE"
	CodeOutputPolicyViolation Code = "OUTPUT_POLICY_VIOLATION"
	CodeInternal              Code = "INTERNAL"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "일시적인 오류가 발생했어요. 잠시 후 다시 시도해 주세요."
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage is used when a key does not exist.
	RedisNotFoundMessage = "redis key not found"

	InputInvalidMessage   = "메시지를 입력해 주세요."
	ContentBlockedMessage = "요청하신 내용은 처리할 수 없어요. 다른 질문을 해 주세요."
	RateLimitedMessage    = "요청이 많아 잠시 대기 중이에요. 잠시 후 다시 시도해 주세요."
	CircuitOpenMessage    = "지금은 응답이 지연되고 있어요. 잠시 후 다시 시도해 주세요."
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Code    Code
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Code:    codeForStatus(status),
		Message: message,
	}
}

// WithCode creates an AppError carrying an explicit code.
func WithCode(err error, code Code, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  StatusOf(code),
		Code:    code,
		Message: message,
	}
}

func InputInvalid(err error) *AppError {
	return WithCode(err, CodeInputInvalid, InputInvalidMessage)
}

func ContentBlocked(err error) *AppError {
	return WithCode(err, CodeContentBlocked, ContentBlockedMessage)
}

func RateLimited(err error) *AppError {
	return WithCode(err, CodeRateLimited, RateLimitedMessage)
}

func CircuitOpen(err error) *AppError {
	return WithCode(err, CodeCircuitOpen, CircuitOpenMessage)
}

func ProviderFailure(err error) *AppError {
	return WithCode(err, CodeProviderFailure, SystemErrorMessage)
}

func Internal(err error) *AppError {
	return WithCode(err, CodeInternal, SystemErrorMessage)
}

// StatusOf maps an error code to its HTTP status.
func StatusOf(code Code) int {
	switch code {
	case CodeInputInvalid, CodeContentBlocked:
		return http.StatusBadRequest
	case CodeRateLimited, CodeCircuitOpen:
		return http.StatusTooManyRequests
	case CodeOutputPolicyViolation:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

func codeForStatus(status int) Code {
	switch status {
	case http.StatusBadRequest:
		return CodeInputInvalid
	case http.StatusTooManyRequests:
		return CodeRateLimited
	default:
		return CodeInternal
	}
}

// From extracts an AppError from err, falling back to an INTERNAL error.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return t.Code != "" && t.Code == e.Code
	}
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}
