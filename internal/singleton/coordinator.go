package singleton

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Iron-Ham/singleton/internal/argv"
	"github.com/Iron-Ham/singleton/internal/channel"
	"github.com/Iron-Ham/singleton/internal/config"
	"github.com/Iron-Ham/singleton/internal/errors"
	"github.com/Iron-Ham/singleton/internal/event"
	"github.com/Iron-Ham/singleton/internal/identity"
	"github.com/Iron-Ham/singleton/internal/lock"
	"github.com/Iron-Ham/singleton/internal/logging"
)

// Coordinator decides leadership for one identity and runs either the
// leader's receive side or the follower's forwarding side.
type Coordinator struct {
	cfg       config.Config
	token     string
	activator Activator
	logger    *logging.Logger
	bus       *event.Bus
	source    argv.Source
	open      ChannelOpener

	mu          sync.Mutex
	initialized bool
	cleanedUp   bool
	id          identity.Identity
	role        Role
	lock        *lock.FileLock
	ch          *channel.Channel
	unsubscribe func()
}

// New creates a Coordinator for token. Nothing is acquired until Initialize.
func New(cfg config.Config, token string, activator Activator, opts ...Option) *Coordinator {
	c := &Coordinator{
		cfg:       cfg,
		token:     token,
		activator: activator,
		logger:    logging.NopLogger(),
		open:      channel.Open,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.activator == nil {
		c.activator = ActivatorFunc(func([]string) bool { return true })
	}
	if c.source == nil {
		c.source = argv.Default(token, c.logger)
	}
	return c
}

// LockPath returns the leadership lock file for id under cfg.
func LockPath(cfg config.Config, id identity.Identity) string {
	return filepath.Join(cfg.Channel.ResolvedDir(), identity.FileKey(id.Name())+".lock")
}

// Initialize decides this process's role. A leader starts receiving batches
// before Initialize returns. A follower forwards its arguments and reports
// the outcome in Result.Delivery; a non-nil error alongside a follower
// result describes why delivery fell short.
//
// Initialize may be called once. Later calls return ErrAlreadyInitialized.
func (c *Coordinator) Initialize(ctx context.Context) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return Result{Role: c.role}, errors.ErrAlreadyInitialized
	}
	c.initialized = true

	id, err := identity.New(c.token)
	if err != nil {
		return Result{}, err
	}
	c.id = id
	c.logger = c.logger.WithIdentity(id.Name())

	// Batches published from this instant on are delivered to the leader,
	// including those from followers that lost the race below.
	since := time.Now()

	fl := lock.New(LockPath(c.cfg, id))
	won, err := fl.TryLock()
	if err != nil {
		return Result{}, fmt.Errorf("acquire leadership for %s: %w", id, err)
	}
	if won {
		c.role = RoleLeader
		c.lock = fl
		return c.lead(ctx, since)
	}

	c.role = RoleFollower
	return c.follow(ctx)
}

// InitializeAsFirstInstance reports whether this process is the leader. A
// follower has forwarded its arguments, or tried to, by the time it returns;
// delivery failures are logged and otherwise ignored.
func (c *Coordinator) InitializeAsFirstInstance(ctx context.Context) bool {
	res, err := c.Initialize(ctx)
	if err != nil {
		if errors.Is(err, errors.ErrAlreadyInitialized) {
			return res.IsLeader()
		}
		c.logger.Warn("initialization incomplete",
			"role", res.Role.String(),
			"delivery", res.Delivery.String(),
			"error", err.Error(),
		)
	}
	return res.IsLeader()
}

// Role returns the role decided by Initialize.
func (c *Coordinator) Role() Role {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.role
}

// Identity returns the identity derived by Initialize.
func (c *Coordinator) Identity() identity.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// Cleanup stops receiving, closes the leader's channel and releases the
// leadership lock. It is a no-op before Initialize and on repeated calls.
func (c *Coordinator) Cleanup() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized || c.cleanedUp {
		return nil
	}
	c.cleanedUp = true

	var errs []error
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	if c.ch != nil {
		if err := c.ch.Close(); err != nil {
			errs = append(errs, err)
		}
		c.ch = nil
	}
	if c.lock != nil {
		if err := c.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("release leadership: %w", err))
		}
		c.lock = nil
	}

	c.logger.Debug("coordinator cleaned up", "role", c.role.String())
	c.bus.Publish(event.NewInstanceCleanupEvent(c.id.Name(), c.role.String()))
	return errors.Join(errs...)
}

// Probe reports whether a leader currently holds the leadership lock for
// token. It reads the owner recorded in the lock file and never takes the
// lock, so probing cannot change who wins an election. A leader that has
// not yet recorded itself reads as not running.
func Probe(cfg config.Config, token string) (bool, error) {
	id, err := identity.New(token)
	if err != nil {
		return false, err
	}
	_, running, err := lock.Owner(LockPath(cfg, id))
	return running, err
}

func (c *Coordinator) channelOptions() []channel.Option {
	return []channel.Option{
		channel.WithDir(c.cfg.Channel.ResolvedDir()),
		channel.WithMinMessageAge(c.cfg.Channel.MinMessageAge),
		channel.WithPollInterval(c.cfg.Channel.PollInterval),
		channel.WithLogger(c.logger),
	}
}
