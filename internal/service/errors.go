package service

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

type ErrorType int

const (
	ErrValidation ErrorType = iota
	ErrUpstream
	ErrNotFound
	ErrUnknown
)

func (t ErrorType) String() string {
	switch t {
	case ErrValidation:
		return "Validation"
	case ErrUpstream:
		return "Upstream"
	case ErrNotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}

// HTTPStatus maps an error type to the status the API answers with.
func (t ErrorType) HTTPStatus() int {
	switch t {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type GatewayError struct {
	Type    ErrorType
	Message string
	Context map[string]any
	Cause   error
}

func NewError(errorType ErrorType, message string) *GatewayError {
	return &GatewayError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
	}
}

func NewErrorWithCause(errorType ErrorType, message string, cause error) *GatewayError {
	return &GatewayError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
		Cause:   cause,
	}
}

func (e *GatewayError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s", e.Type.String(), e.Message))

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ctxParts := make([]string, 0, len(keys))
		for _, k := range keys {
			ctxParts = append(ctxParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		parts = append(parts, fmt.Sprintf("context: %s", strings.Join(ctxParts, ", ")))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, " | ")
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

func (e *GatewayError) WithContext(key string, value any) *GatewayError {
	e.Context[key] = value
	return e
}

func IsErrorType(err error, errorType ErrorType) bool {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Type == errorType
	}
	return false
}

// TypeOf returns the type of the first GatewayError in err's chain, or ErrUnknown.
func TypeOf(err error) ErrorType {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Type
	}
	return ErrUnknown
}

func WrapError(err error, errorType ErrorType, message string) *GatewayError {
	return NewErrorWithCause(errorType, message, err)
}
