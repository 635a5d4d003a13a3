package api

import (
	"errors"
	"net/http"

	"github.com/samcharles93/orbital/internal/system"
	"github.com/samcharles93/orbital/pkg/orbital"
)

var (
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrSessionNotFound = errors.New("context not found")
)

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string { return e.msg }
func (e invalidRequestError) Unwrap() error { return ErrInvalidRequest }

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// classify maps an error to an HTTP status and error type.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound, "not_found_error"
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, system.ErrInvalid):
		return http.StatusBadRequest, "invalid_request_error"
	}
	switch orbital.KindOf(err) {
	case orbital.ErrInvalidArgument:
		return http.StatusBadRequest, "invalid_argument_error"
	case orbital.ErrNotReady:
		return http.StatusConflict, "not_ready_error"
	case orbital.ErrCompute:
		return http.StatusUnprocessableEntity, "compute_error"
	case orbital.ErrResource:
		return http.StatusInternalServerError, "resource_error"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}
