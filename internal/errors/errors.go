// Package errors provides the error vocabulary shared by the singleton
// packages: sentinel errors for the election and forwarding protocol, typed
// errors that carry context about the channel or wait involved, and a
// retry classification helper.
//
//	err := errors.NewChannelError("open channel", cause).
//	    WithChannel(name).
//	    WithAttempt(3)
//
//	if errors.Is(err, errors.ErrChannelUnavailable) { ... }
//
//	var chErr *errors.ChannelError
//	if errors.As(err, &chErr) { ... }
//
//	if errors.IsRetryable(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Re-export standard library functions so callers need only this package.
var (
	Is   = errors.Is
	As   = errors.As
	New  = errors.New
	Join = errors.Join
)

// Election and lifecycle sentinel errors
var (
	// ErrAlreadyInitialized indicates Initialize was called more than once
	// on the same coordinator.
	ErrAlreadyInitialized = New("coordinator already initialized")
	// ErrInvalidIdentity indicates an empty or unusable identity token.
	ErrInvalidIdentity = New("invalid identity")
	// ErrLockNotHeld indicates an operation that requires the leadership
	// lock was attempted without holding it.
	ErrLockNotHeld = New("leadership lock not held")
)

// Channel and delivery sentinel errors
var (
	// ErrChannelUnavailable indicates the follower gave up opening the
	// message channel after exhausting its attempts.
	ErrChannelUnavailable = New("message channel unavailable")
	// ErrChannelClosed indicates an operation on a closed channel handle.
	ErrChannelClosed = New("message channel closed")
	// ErrDeliveryTimeout indicates the publish completion signal did not
	// arrive within the configured bound.
	ErrDeliveryTimeout = New("delivery not confirmed")
	// ErrLeaderUnreachable indicates the follower published its batch but
	// the leader never acknowledged it.
	ErrLeaderUnreachable = New("leader unreachable")
	// ErrPayloadCorrupt indicates a payload that could not be decoded into
	// an argument batch.
	ErrPayloadCorrupt = New("payload corrupt")
)

var (
	// ErrTimeout matches every *TimeoutError.
	ErrTimeout = New("operation timed out")
	// ErrInvalidInput matches every *ValidationError.
	ErrInvalidInput = New("invalid input")
)

// ChannelError is a failure on a named message channel. Channel failures
// are retryable unless marked otherwise: the channel's files may simply be
// contended by another process.
type ChannelError struct {
	Op      string // what was being done, e.g. "open channel"
	Channel string
	Attempt int // 1-based open attempt, 0 when not retrying
	Err     error

	permanent bool
}

// NewChannelError creates a retryable ChannelError.
func NewChannelError(op string, err error) *ChannelError {
	return &ChannelError{Op: op, Err: err}
}

// WithChannel records the channel name.
func (e *ChannelError) WithChannel(name string) *ChannelError {
	e.Channel = name
	return e
}

// WithAttempt records which open attempt produced the error.
func (e *ChannelError) WithAttempt(n int) *ChannelError {
	e.Attempt = n
	return e
}

// WithRetryable marks whether retrying the operation can help.
func (e *ChannelError) WithRetryable(r bool) *ChannelError {
	e.permanent = !r
	return e
}

// Retryable reports whether retrying the operation can help.
func (e *ChannelError) Retryable() bool { return !e.permanent }

func (e *ChannelError) Error() string {
	msg := e.Op
	if e.Channel != "" {
		msg += " " + e.Channel
	}
	if e.Attempt > 0 {
		msg += fmt.Sprintf(" (attempt %d)", e.Attempt)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ChannelError) Unwrap() error { return e.Err }

// ValidationError reports invalid input. It matches ErrInvalidInput.
type ValidationError struct {
	Field   string
	Value   any
	Message string
	Err     error
}

// NewValidationError creates a ValidationError with message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// WithField records the offending field.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue records the offending value.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause attaches an underlying error.
func (e *ValidationError) WithCause(err error) *ValidationError {
	e.Err = err
	return e
}

func (e *ValidationError) Error() string {
	msg := e.Message
	switch {
	case e.Field != "" && e.Value != nil:
		msg = fmt.Sprintf("%s %v: %s", e.Field, e.Value, msg)
	case e.Field != "":
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Retryable reports false: the same input fails the same way.
func (e *ValidationError) Retryable() bool { return false }

// TimeoutError reports a bounded wait that expired. It matches ErrTimeout.
type TimeoutError struct {
	Op    string
	After time.Duration
	Err   error
}

// NewTimeoutError creates a TimeoutError for op bounded by after.
func NewTimeoutError(op string, after time.Duration) *TimeoutError {
	return &TimeoutError{Op: op, After: after}
}

// WithCause attaches an underlying error.
func (e *TimeoutError) WithCause(err error) *TimeoutError {
	e.Err = err
	return e
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("%s: timed out after %s", e.Op, e.After)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// Retryable reports true: a later wait may succeed.
func (e *TimeoutError) Retryable() bool { return true }

// IsRetryable reports whether err, or an error it wraps, is transient. Errors
// without a classification are not retryable, except those matching
// ErrTimeout.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var r interface{ Retryable() bool }
	if As(err, &r) {
		return r.Retryable()
	}
	return Is(err, ErrTimeout)
}

// Wrap wraps err with a context message. A nil err yields nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps err with a formatted context message. A nil err yields nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
