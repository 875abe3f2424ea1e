package singleton

import (
	"github.com/Iron-Ham/singleton/internal/argv"
	"github.com/Iron-Ham/singleton/internal/channel"
	"github.com/Iron-Ham/singleton/internal/event"
	"github.com/Iron-Ham/singleton/internal/logging"
)

// ChannelOpener opens a message channel. channel.Open is the default.
type ChannelOpener func(name string, opts ...channel.Option) (*channel.Channel, error)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBus publishes lifecycle events on b.
func WithBus(b *event.Bus) Option {
	return func(c *Coordinator) {
		c.bus = b
	}
}

// WithArgSource sets where a follower reads the arguments it forwards. The
// default is argv.Default for the coordinator's token.
func WithArgSource(s argv.Source) Option {
	return func(c *Coordinator) {
		c.source = s
	}
}

// WithChannelOpener replaces the function used to open the message channel.
func WithChannelOpener(open ChannelOpener) Option {
	return func(c *Coordinator) {
		if open != nil {
			c.open = open
		}
	}
}
