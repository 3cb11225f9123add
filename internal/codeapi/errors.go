package codeapi

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a 2xx response whose body is not the expected shape.
var ErrMalformedResponse = errors.New("malformed response")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d - %s", e.StatusCode, e.Body)
}
