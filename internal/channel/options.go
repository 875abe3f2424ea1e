package channel

import (
	"os"
	"path/filepath"
	"time"

	"github.com/Iron-Ham/singleton/internal/logging"
)

const (
	// DefaultMinMessageAge is how long a record is guaranteed to stay in
	// the log before publishers may prune it.
	DefaultMinMessageAge = 30 * time.Second

	// DefaultPollInterval is the fallback re-read interval for subscribers
	// when no filesystem notification arrives.
	DefaultPollInterval = 250 * time.Millisecond
)

// Option configures a Channel.
type Option func(*Channel)

// WithDir sets the base directory under which channel directories live.
func WithDir(dir string) Option {
	return func(c *Channel) {
		if dir != "" {
			c.baseDir = dir
		}
	}
}

// WithMinMessageAge sets the retention floor for records. Zero or negative
// disables pruning.
func WithMinMessageAge(d time.Duration) Option {
	return func(c *Channel) {
		c.minAge = d
	}
}

// WithPollInterval sets the subscriber poll interval. Non-positive values
// are ignored.
func WithPollInterval(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Channel) {
		if l != nil {
			c.logger = l
		}
	}
}

// DefaultDir returns the per-user base directory for channels.
func DefaultDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "singleton")
	}
	return filepath.Join(os.TempDir(), "singleton")
}
