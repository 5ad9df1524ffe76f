package fetcher

import (
	"context"
	"errors"
	"net"
	"syscall"

	"github.com/capykyo/capy-book-fetch/internal/apperrors"
)

// Messages attached to classified fetch failures.
const (
	MsgInvalidURL  = "invalid URL format"
	MsgTimeout     = "request timed out, please try again later"
	MsgUnreachable = "unable to connect to target server"
	MsgCanceled    = "request canceled"
	MsgTooLarge    = "response body too large"
)

// Outcome labels used for fetch metrics.
const (
	OutcomeSuccess     = "success"
	OutcomeTimeout     = "timeout"
	OutcomeUnreachable = "unreachable"
	OutcomeHTTPError   = "http_error"
	OutcomeError       = "error"
)

// classify turns a transport error from http.Client.Do into an *apperrors.Error.
func classify(err error) *apperrors.Error {
	var netErr net.Error
	var dnsErr *net.DNSError

	switch {
	case errors.Is(err, ErrTooManyRedirects):
		return apperrors.Wrap(apperrors.KindUnknown, "network error: "+ErrTooManyRedirects.Error(), err)
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return apperrors.Wrap(apperrors.KindUpstreamTimeout, MsgTimeout, err)
	case errors.Is(err, context.Canceled):
		return apperrors.Wrap(apperrors.KindUnknown, MsgCanceled, err)
	case errors.As(err, &dnsErr),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH):
		return apperrors.Wrap(apperrors.KindUpstreamUnreachable, MsgUnreachable, err)
	default:
		return apperrors.Wrap(apperrors.KindUnknown, "network error: "+err.Error(), err)
	}
}

// Outcome maps a Fetch error to its metric label.
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	switch apperrors.KindOf(err) {
	case apperrors.KindUpstreamTimeout:
		return OutcomeTimeout
	case apperrors.KindUpstreamUnreachable:
		return OutcomeUnreachable
	case apperrors.KindUpstreamHTTP:
		return OutcomeHTTPError
	default:
		return OutcomeError
	}
}
