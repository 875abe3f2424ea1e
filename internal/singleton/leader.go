package singleton

import (
	"context"
	"os"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/Iron-Ham/singleton/internal/argv"
	"github.com/Iron-Ham/singleton/internal/channel"
	"github.com/Iron-Ham/singleton/internal/event"
	"github.com/Iron-Ham/singleton/internal/logging"
)

// lead starts the leader's receive side. The caller holds c.mu and the
// leadership lock. Failing to open the channel does not cost leadership:
// the process stays leader and the error is returned for the caller to log.
func (c *Coordinator) lead(ctx context.Context, since time.Time) (Result, error) {
	logger := c.logger.WithRole(RoleLeader.String())
	res := Result{Role: RoleLeader, Delivery: DeliveryNone}

	if err := c.lock.WriteOwner(); err != nil {
		logger.Debug("recording lock owner", "error", err.Error())
	}

	ch, attempts, err := c.openWithRetry(ctx)
	res.Attempts = attempts
	if err != nil {
		logger.Error("leader cannot receive forwarded arguments", "error", err.Error())
		return res, err
	}

	unsubscribe, err := ch.Subscribe(since, func(rec channel.Record) {
		c.receive(ch, rec)
	})
	if err != nil {
		_ = ch.Close()
		logger.Error("leader cannot subscribe", "error", err.Error())
		return res, err
	}
	c.ch = ch
	c.unsubscribe = unsubscribe

	logger.Info("elected leader", "lock", c.lock.Path(), "channel", ch.Name())
	c.bus.Publish(event.NewLeaderElectedEvent(c.id.Name(), ch.Name(), c.lock.Path(), os.Getpid()))
	return res, nil
}

// receive handles one record on the leader's subscription.
func (c *Coordinator) receive(ch *channel.Channel, rec channel.Record) {
	if rec.Kind != channel.KindBatch {
		return
	}
	logger := c.logger.WithRole(RoleLeader.String()).With("record", rec.ID, "from_pid", rec.FromPID)

	args, err := argv.Decode(rec.Payload)
	if err != nil {
		logger.Error("dropping undecodable batch", "error", err.Error())
		c.bus.Publish(event.NewBatchDroppedEvent(rec.ID, rec.FromPID, err.Error()))
		return
	}

	if logger.Enabled(logging.LevelDebug) {
		logger.Debug("batch arguments", "args", args)
	}
	accepted, panicked := c.activate(args)
	if !panicked {
		logger.Info("batch received", "args", len(args), "accepted", accepted)
	}
	c.bus.Publish(event.NewBatchReceivedEvent(rec.ID, rec.Seq, rec.FromPID, args, accepted, panicked))

	if !c.cfg.Leader.Ack {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Follower.PublishTimeout)
	defer cancel()
	if _, err := ch.Ack(ctx, rec.ID, accepted); err != nil {
		logger.Warn("acknowledging batch", "error", err.Error())
	}
}

// activate calls the activator, converting a panic into a rejected batch.
func (c *Coordinator) activate(args []string) (accepted, panicked bool) {
	var pc panics.Catcher
	pc.Try(func() {
		accepted = c.activator.SignalExternalCommandLineArgs(args)
	})
	if r := pc.Recovered(); r != nil {
		c.logger.Error("activator panicked", "args", len(args), "panic", r.String())
		return false, true
	}
	return accepted, false
}
