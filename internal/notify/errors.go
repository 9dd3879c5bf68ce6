package notify

import (
	"errors"
	"fmt"
	"time"
)

// ThrottleError is returned when the provider asks us to back off.
type ThrottleError struct {
	RetryAfter time.Duration
	Cause      error
}

func (e *ThrottleError) Error() string {
	return fmt.Sprintf("throttled: retry after %v (cause: %v)", e.RetryAfter, e.Cause)
}

func (e *ThrottleError) Unwrap() error { return e.Cause }

// RejectedError is a 4xx from the provider; retrying will not help.
type RejectedError struct {
	Status int
	Body   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("mail rejected: status %d: %s", e.Status, e.Body)
}

func retryable(err error) bool {
	var rej *RejectedError
	return !errors.As(err, &rej)
}
