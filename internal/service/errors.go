package service

import (
	"errors"
	"fmt"
)

// ErrEmptyBody is returned when a provider answers 200 with no payload.
var ErrEmptyBody = errors.New("empty response body")

// StatusError is returned when a provider answers with anything but 200.
type StatusError struct {
	Provider   string
	Operation  string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: API request failed with status: %d", e.Provider, e.Operation, e.StatusCode)
}
