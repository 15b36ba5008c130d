// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Query errors.
	ErrEmptyQuery = errors.New("query has neither text nor image")

	// Dispatch errors.
	ErrTransport    = errors.New("price service unreachable")
	ErrServerStatus = errors.New("price service returned an error status")
	ErrDecode       = errors.New("malformed price service response")
	ErrCanceled     = errors.New("search canceled")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ServiceUnavailableMessage is the single notice shown for any failed search.
const ServiceUnavailableMessage = "Failed to fetch prices. Ensure the price service is running!"

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// UserMessage returns the message meant for the user, falling back to the
// generic service notice for errors that carry none.
func UserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) && userErr.UserMessage != "" {
		return userErr.UserMessage
	}
	return ServiceUnavailableMessage
}

// FailureKind identifies why a search failed.
type FailureKind string

// Failure kinds.
const (
	FailureNone      FailureKind = ""
	FailureTransport FailureKind = "transport"
	FailureServer    FailureKind = "server"
	FailureDecode    FailureKind = "decode"
	FailureCanceled  FailureKind = "canceled"
	FailureUnknown   FailureKind = "unknown"
)

// Classify maps an error returned by the dispatcher to its failure kind.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrCanceled), errors.Is(err, context.Canceled):
		return FailureCanceled
	case errors.Is(err, ErrServerStatus):
		return FailureServer
	case errors.Is(err, ErrDecode):
		return FailureDecode
	case errors.Is(err, ErrTransport), errors.Is(err, context.DeadlineExceeded):
		return FailureTransport
	default:
		return FailureUnknown
	}
}
