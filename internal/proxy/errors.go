package proxy

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"

	apierrors "github.com/aashari/go-generative-gateway/internal/errors"
	"github.com/aashari/go-generative-gateway/internal/types"
)

// ErrSuperseded is the cancellation cause set when a newer request in the
// same session replaces an in-flight one.
var ErrSuperseded = errors.New("superseded by a newer request in the same session")

// ClassifyTransportError maps a failed backend exchange onto a gateway error.
// Classification uses the error chain, never the message text.
func ClassifyTransportError(ctx context.Context, err error, mode types.Mode, timeout time.Duration) *apierrors.APIError {
	if err == nil {
		return nil
	}
	if apiErr, ok := apierrors.AsAPIError(err); ok {
		return apiErr
	}

	switch {
	case errors.Is(context.Cause(ctx), ErrSuperseded), errors.Is(err, ErrSuperseded):
		return apierrors.NewRequestCancelledError().WithCause(err)
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return apierrors.NewTimeoutError(string(mode), timeout).WithCause(err)
	case errors.Is(err, syscall.ECONNREFUSED):
		return apierrors.NewConnectionRefusedError().WithCause(err)
	case isDNSFailure(err):
		return apierrors.NewHostNotFoundError().WithCause(err)
	default:
		return apierrors.NewGatewayError(err.Error()).WithCause(err)
	}
}

// IsConnectionRefused reports whether err is a refused TCP connection.
// It is the only class the dispatcher retries.
func IsConnectionRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) || apierrors.IsCode(err, apierrors.CodeConnectionRefused)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isDNSFailure(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
