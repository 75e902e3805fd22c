package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/cujulink/internal/app"
	"github.com/okian/cujulink/pkg/logger"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrRateLimited = errors.New("rate limited")
	ErrTimeout     = errors.New("request timed out")
)

// opError ties an error to the handler operation that produced it.
// Both kind and err take part in errors.Is and errors.As.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	switch {
	case e.err == nil:
		return e.op + ": " + e.kind.Error()
	case e.kind == nil:
		return e.op + ": " + e.err.Error()
	default:
		return e.op + ": " + e.kind.Error() + ": " + e.err.Error()
	}
}

func (e *opError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.kind != nil {
		out = append(out, e.kind)
	}
	if e.err != nil {
		out = append(out, e.err)
	}
	return out
}

// NewKind returns an error of the given kind raised by op.
func NewKind(op string, kind error) error {
	return &opError{op: op, kind: kind}
}

// Wrap annotates err with op. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, err: err}
}

// WrapKind annotates err with op and classifies it as kind.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return NewKind(op, kind)
	}
	return &opError{op: op, kind: kind, err: err}
}

// statusFor maps an error to its HTTP status and response code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrNotEnoughPlayers):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrPlayerNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrNoLink):
		return http.StatusNotFound, "no_link"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeErrorFor writes err with the status it maps to. Server errors are logged.
func writeErrorFor(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= statusInternalError {
		logger.Named("api").Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.Int("status", status),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}

func errMissing(param string) error {
	return fmt.Errorf("%w: %s is required", ErrBadRequest, param)
}
