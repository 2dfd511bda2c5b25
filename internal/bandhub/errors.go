package bandhub

import (
	"errors"
	"net/http"
)

// Error kinds. Test with errors.Is.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrUpstream        = errors.New("upstream failure")
	ErrInvalid         = errors.New("invalid request")
)

type opError struct {
	kind error
	msg  string
	err  error
}

func (e *opError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *opError) Is(target error) bool { return target == e.kind }

func (e *opError) Unwrap() error { return e.err }

func unauthenticated() error {
	return &opError{kind: ErrUnauthenticated, msg: "authentication required"}
}

func forbidden(msg string) error { return &opError{kind: ErrForbidden, msg: msg} }

func notFound(msg string) error { return &opError{kind: ErrNotFound, msg: msg} }

func invalid(msg string) error { return &opError{kind: ErrInvalid, msg: msg} }

func upstream(msg string, err error) error {
	return &opError{kind: ErrUpstream, msg: msg, err: err}
}

// publicMessage is what the HTTP layer shows the caller; upstream causes
// stay in the log.
func publicMessage(err error) string {
	var oe *opError
	if errors.As(err, &oe) {
		return oe.msg
	}
	return "internal error"
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
