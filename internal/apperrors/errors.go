// Package apperrors defines the error taxonomy shared by the fetcher, the auth
// middleware and the HTTP handlers, and maps each kind to an HTTP status.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindUnauthorized
	KindNotFound
	KindUpstreamTimeout
	KindUpstreamUnreachable
	KindUpstreamHTTP
	KindPayloadTooLarge
)

// String returns the kind name used in logs and metric labels.
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindUpstreamTimeout:
		return "upstream_timeout"
	case KindUpstreamUnreachable:
		return "upstream_unreachable"
	case KindUpstreamHTTP:
		return "upstream_http_error"
	case KindPayloadTooLarge:
		return "payload_too_large"
	default:
		return "unknown"
	}
}

// Error is a classified error carrying a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	// UpstreamStatus is the status code returned by the target site (KindUpstreamHTTP only).
	UpstreamStatus int
	Err            error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status for the error.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstreamTimeout:
		return http.StatusRequestTimeout
	case KindUpstreamUnreachable:
		return http.StatusServiceUnavailable
	case KindUpstreamHTTP:
		if e.UpstreamStatus >= http.StatusBadRequest && e.UpstreamStatus <= 599 {
			return e.UpstreamStatus
		}
		return http.StatusBadGateway
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind that wraps cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Upstream creates an error mirroring a non-success upstream status.
func Upstream(status int) *Error {
	msg := fmt.Sprintf("client error: HTTP %d", status)
	if status >= http.StatusInternalServerError {
		msg = fmt.Sprintf("server error: HTTP %d", status)
	}
	return &Error{Kind: KindUpstreamHTTP, Message: msg, UpstreamStatus: status}
}

// InvalidInput is shorthand for New(KindInvalidInput, message).
func InvalidInput(message string) *Error {
	return New(KindInvalidInput, message)
}

// Unauthorized is shorthand for New(KindUnauthorized, message).
func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindUnknown for unclassified errors.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindUnknown
}

// StatusCode returns the HTTP status for any error; unclassified errors map to 500.
func StatusCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode()
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing message for err.
func Message(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return "unknown error"
}

// Response is the JSON body of every failed API call.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewResponse builds the failure body for err.
func NewResponse(err error) Response {
	return Response{Success: false, Error: Message(err)}
}
