package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/crudio/crudio/internal/platform/httpx"
)

var (
	// ErrRequest matches every failed API call, transport or status.
	ErrRequest = errors.New("api: request failed")
	// ErrNotFound matches a 404 from the API.
	ErrNotFound = errors.New("api: not found")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Op      string
	Status  int
	Problem *httpx.ProblemDetail
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("api: %s: status %d", e.Op, e.Status)
	if e.Problem != nil {
		msg += ": " + e.Problem.String()
	}
	return msg
}

// Is makes StatusError match ErrRequest, and ErrNotFound on 404.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrRequest, httpx.ErrUpstream:
		return true
	case ErrNotFound, httpx.ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

type transportError struct {
	op  string
	err error
}

func (e *transportError) Error() string { return fmt.Sprintf("api: %s: %v", e.op, e.err) }

func (e *transportError) Unwrap() error { return e.err }

func (e *transportError) Is(target error) bool {
	return target == ErrRequest || target == httpx.ErrUpstream
}
