package channel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/singleton/internal/errors"
	"github.com/Iron-Ham/singleton/internal/identity"
	"github.com/Iron-Ham/singleton/internal/lock"
	"github.com/Iron-Ham/singleton/internal/logging"
)

// Channel is a handle onto a named message channel.
type Channel struct {
	name         string
	baseDir      string
	dir          string
	logPath      string
	minAge       time.Duration
	pollInterval time.Duration
	logger       *logging.Logger

	// writeMu serializes writers within this process; guard serializes
	// writers across processes.
	writeMu sync.Mutex
	guard   *lock.FileLock

	mu        sync.Mutex
	published uint64
	changed   chan struct{} // closed and replaced on every publish
	closed    bool
	done      chan struct{}
	subs      sync.WaitGroup

	now func() time.Time
}

// Open returns a handle onto the channel called name, creating the shared
// directory if needed. Failures are *errors.ChannelError values and are
// retryable.
func Open(name string, opts ...Option) (*Channel, error) {
	if name == "" {
		return nil, errors.NewChannelError("open channel", errors.ErrInvalidInput).WithRetryable(false)
	}

	c := &Channel{
		name:         name,
		baseDir:      DefaultDir(),
		minAge:       DefaultMinMessageAge,
		pollInterval: DefaultPollInterval,
		logger:       logging.NopLogger(),
		changed:      make(chan struct{}),
		done:         make(chan struct{}),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.dir = filepath.Join(c.baseDir, identity.FileKey(name)+".channel")
	c.logPath = filepath.Join(c.dir, logFileName)
	c.guard = lock.New(filepath.Join(c.dir, lockFileName))
	c.logger = c.logger.With("channel", name)

	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return nil, errors.NewChannelError("create channel directory", err).WithChannel(name)
	}
	f, err := os.OpenFile(c.logPath, os.O_CREATE|os.O_RDONLY, 0o600)
	if err != nil {
		return nil, errors.NewChannelError("open channel log", err).WithChannel(name)
	}
	_ = f.Close()

	c.logger.Debug("channel opened", "dir", c.dir)
	return c, nil
}

// Name returns the channel name.
func (c *Channel) Name() string { return c.name }

// Dir returns the shared channel directory.
func (c *Channel) Dir() string { return c.dir }

// Publish appends payload as a batch record. It blocks until the record is
// in the shared log.
func (c *Channel) Publish(ctx context.Context, payload []byte) (Record, error) {
	return c.write(ctx, Record{Kind: KindBatch, Payload: payload})
}

// Ack appends an acknowledgment for the batch record with ID ref.
func (c *Channel) Ack(ctx context.Context, ref string, accepted bool) (Record, error) {
	return c.write(ctx, Record{Kind: KindAck, Ref: ref, Accepted: &accepted})
}

func (c *Channel) write(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if c.isClosed() {
		return Record{}, errors.NewChannelError("publish", errors.ErrChannelClosed).WithChannel(c.name).WithRetryable(false)
	}

	rec.ID = uuid.NewString()
	rec.FromPID = os.Getpid()
	rec.Timestamp = c.now()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.guard.Lock(); err != nil {
		return Record{}, errors.NewChannelError("acquire write guard", err).WithChannel(c.name)
	}
	rec, err := appendRecord(c.logPath, rec, c.minAge, rec.Timestamp)
	if unlockErr := c.guard.Unlock(); unlockErr != nil && err == nil {
		err = unlockErr
	}
	if err != nil {
		return Record{}, errors.NewChannelError("publish", err).WithChannel(c.name)
	}

	c.mu.Lock()
	c.published++
	close(c.changed)
	c.changed = make(chan struct{})
	c.mu.Unlock()

	c.logger.Debug("record published", "kind", string(rec.Kind), "id", rec.ID, "seq", rec.Seq)
	return rec, nil
}

// MessagesPublished returns how many records this handle has published.
func (c *Channel) MessagesPublished() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.published
}

// WaitPublished blocks until this handle has published at least n records,
// ctx is done, or the channel is closed.
func (c *Channel) WaitPublished(ctx context.Context, n uint64) error {
	for {
		c.mu.Lock()
		if c.published >= n {
			c.mu.Unlock()
			return nil
		}
		if c.closed {
			c.mu.Unlock()
			return errors.ErrChannelClosed
		}
		changed := c.changed
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

// Close cancels every subscription, wakes any WaitPublished callers, and
// releases the handle. It is safe to call more than once.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	close(c.changed)
	c.mu.Unlock()

	c.subs.Wait()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.guard.Unlock(); err != nil {
		return fmt.Errorf("close channel %s: %w", c.name, err)
	}
	c.logger.Debug("channel closed")
	return nil
}

func (c *Channel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
