package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ValidationError is one rejected setting.
type ValidationError struct {
	Field   string // dotted key, e.g. "follower.max_attempts"
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s = %v: %s", e.Field, e.Value, e.Message)
}

// ValidationErrors is every rejected setting from one Validate call.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return ""
	case 1:
		return e[0].Error()
	}
	lines := make([]string, 0, len(e)+1)
	lines = append(lines, fmt.Sprintf("%d invalid settings:", len(e)))
	for _, err := range e {
		lines = append(lines, "  - "+err.Error())
	}
	return strings.Join(lines, "\n")
}

// ValidLogLevels returns the accepted logging.level values.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

const (
	maxAttemptsLimit   = 10000
	maxBackoffLimit    = 10 * time.Second
	maxWaitLimit       = 5 * time.Minute
	minPollInterval    = time.Millisecond
	maxLogSizeMB       = 1000
	maxBatchesOnScreen = 10000
)

// Validate returns every out-of-range setting in c. A nil result means
// the configuration is usable.
func (c *Config) Validate() []ValidationError {
	var v checks
	f := c.Follower

	// channel
	v.check(c.Channel.MinMessageAge >= 0, "channel.min_message_age", c.Channel.MinMessageAge, "must be non-negative")
	v.check(c.Channel.PollInterval >= minPollInterval, "channel.poll_interval", c.Channel.PollInterval,
		fmt.Sprintf("must be at least %v", minPollInterval))
	v.check(!strings.ContainsRune(c.Channel.Dir, 0), "channel.dir", c.Channel.Dir, "must not contain NUL bytes")

	// follower
	v.inRange("follower.max_attempts", f.MaxAttempts, 1, maxAttemptsLimit)
	v.check(f.BackoffInitial >= 0, "follower.backoff_initial", f.BackoffInitial, "must be non-negative")
	switch {
	case f.BackoffMax < f.BackoffInitial:
		v.add("follower.backoff_max", f.BackoffMax,
			fmt.Sprintf("must be at least follower.backoff_initial (%v)", f.BackoffInitial))
	case f.BackoffMax > maxBackoffLimit:
		v.add("follower.backoff_max", f.BackoffMax, fmt.Sprintf("exceeds maximum of %v", maxBackoffLimit))
	}
	v.wait("follower.publish_timeout", f.PublishTimeout)
	if f.RequireAck {
		v.wait("follower.ack_timeout", f.AckTimeout)
	}

	// logging
	if lvl := c.Logging.Level; lvl != "" {
		v.check(slices.Contains(ValidLogLevels(), strings.ToLower(lvl)), "logging.level", lvl,
			"must be one of "+strings.Join(ValidLogLevels(), ", "))
	}
	v.inRange("logging.max_size_mb", c.Logging.MaxSizeMB, 1, maxLogSizeMB)
	v.check(c.Logging.MaxBackups >= 0, "logging.max_backups", c.Logging.MaxBackups, "must be non-negative")

	// tui
	v.inRange("tui.max_batches", c.TUI.MaxBatches, 1, maxBatchesOnScreen)

	return v.errs
}

// checks accumulates failures so one pass reports every bad setting.
type checks struct {
	errs []ValidationError
}

func (v *checks) add(field string, value any, msg string) {
	v.errs = append(v.errs, ValidationError{Field: field, Value: value, Message: msg})
}

func (v *checks) check(ok bool, field string, value any, msg string) {
	if !ok {
		v.add(field, value, msg)
	}
}

func (v *checks) inRange(field string, n, lo, hi int) {
	v.check(n >= lo && n <= hi, field, n, fmt.Sprintf("must be between %d and %d", lo, hi))
}

func (v *checks) wait(field string, d time.Duration) {
	switch {
	case d <= 0:
		v.add(field, d, "must be positive")
	case d > maxWaitLimit:
		v.add(field, d, fmt.Sprintf("exceeds maximum of %v", maxWaitLimit))
	}
}
