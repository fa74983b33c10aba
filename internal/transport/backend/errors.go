package backend

import (
	"context"
	"fmt"
	"net"

	"github.com/cockroachdb/errors"
)

// Sentinel errors. Check with errors.Is.
var (
	// ErrBackendUnavailable is returned when the backend cannot be reached or read.
	ErrBackendUnavailable = errors.New("backend: unavailable")
	// ErrTimeout is returned when a request exceeds its deadline.
	ErrTimeout = errors.New("backend: request timed out")
	// ErrCanceled is returned when the caller canceled the request.
	ErrCanceled = errors.New("backend: request canceled")
	// ErrUnexpectedStatus is returned for non-2xx responses.
	ErrUnexpectedStatus = errors.New("backend: unexpected status")
)

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error! status: %d", e.Code)
	}
	return fmt.Sprintf("HTTP error! status: %d - %s", e.Code, e.Body)
}

// Unwrap lets errors.Is match ErrUnexpectedStatus.
func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// classify marks a transport failure with the sentinel that describes it.
func classify(ctx context.Context, op string, err error) error {
	wrapped := errors.Wrapf(err, "backend: %s", op)

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(ctx.Err(), context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return errors.Mark(wrapped, ErrTimeout)
	case errors.Is(err, context.Canceled):
		return errors.Mark(wrapped, ErrCanceled)
	default:
		return errors.Mark(wrapped, ErrBackendUnavailable)
	}
}
