// Package recovery classifies fetch failures and drives the
// retry-with-rotation policy that keeps polling resilient against
// anti-scraping defenses.
package recovery

import (
	"errors"
	"fmt"
	"net/http"
)

// FailureClass partitions fetch failures by how they can be recovered.
type FailureClass string

const (
	// ClassBlocked is an anti-bot block (HTTP 403-class). Recoverable
	// by rotating to the next proxy, when a pool is configured.
	ClassBlocked FailureClass = "blocked"

	// ClassUnauthorized is an identity rejection (HTTP 401-class).
	// Recoverable by regenerating the client's request identity.
	ClassUnauthorized FailureClass = "unauthorized"

	// ClassTransient covers timeouts, network errors, and unexpected
	// response shapes. Never retried within a cycle.
	ClassTransient FailureClass = "transient"

	// ClassStore is a persistence failure while filtering or recording
	// seen items. The affected query is abandoned for the cycle.
	ClassStore FailureClass = "store"
)

// Error is a fetch failure tagged with its recovery class.
type Error struct {
	Class FailureClass
	Op    string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Class, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with a failure class.
func NewError(class FailureClass, op string, err error) *Error {
	return &Error{Class: class, Op: op, Err: err}
}

// Classify returns the failure class of err. Unclassified errors are
// treated as transient.
func Classify(err error) FailureClass {
	var re *Error
	if errors.As(err, &re) {
		return re.Class
	}
	return ClassTransient
}

// ClassifyStatus maps an HTTP response status to a failure class.
func ClassifyStatus(status int) FailureClass {
	switch status {
	case http.StatusUnauthorized:
		return ClassUnauthorized
	case http.StatusForbidden, http.StatusTooManyRequests:
		return ClassBlocked
	default:
		return ClassTransient
	}
}
