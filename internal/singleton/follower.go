package singleton

import (
	"context"
	"time"

	"github.com/dogmatiq/linger"
	"github.com/dogmatiq/linger/backoff"

	"github.com/Iron-Ham/singleton/internal/argv"
	"github.com/Iron-Ham/singleton/internal/channel"
	"github.com/Iron-Ham/singleton/internal/config"
	"github.com/Iron-Ham/singleton/internal/errors"
	"github.com/Iron-Ham/singleton/internal/event"
)

// follow forwards this process's arguments to the leader.
func (c *Coordinator) follow(ctx context.Context) (Result, error) {
	logger := c.logger.WithRole(RoleFollower.String())
	res := Result{Role: RoleFollower, Delivery: DeliveryGaveUp}

	args, _ := c.source.Args()
	if args == nil {
		args = []string{}
	}

	report := func(err error) (Result, error) {
		errMsg := ""
		if err != nil {
			errMsg = err.Error()
			logger.Warn("arguments not delivered",
				"delivery", res.Delivery.String(),
				"attempts", res.Attempts,
				"error", errMsg,
			)
		} else {
			logger.Info("arguments forwarded",
				"delivery", res.Delivery.String(),
				"record", res.RecordID,
				"args", len(args),
			)
		}
		c.bus.Publish(event.NewFollowerSignaledEvent(c.id.Name(), args, res.RecordID, res.Delivery.String(), errMsg))
		return res, err
	}

	payload, err := argv.Encode(args)
	if err != nil {
		return report(err)
	}

	ch, attempts, err := c.openWithRetry(ctx)
	res.Attempts = attempts
	if err != nil {
		return report(err)
	}
	defer func() {
		if cerr := ch.Close(); cerr != nil {
			logger.Debug("closing follower channel", "error", cerr.Error())
		}
	}()

	published := time.Now()
	pubCtx, cancel := context.WithTimeout(ctx, c.cfg.Follower.PublishTimeout)
	defer cancel()

	rec, err := ch.Publish(pubCtx, payload)
	if err == nil {
		err = ch.WaitPublished(pubCtx, 1)
	}
	if err != nil {
		if pubCtx.Err() != nil && ctx.Err() == nil {
			err = errors.NewTimeoutError("confirming publish", c.cfg.Follower.PublishTimeout).
				WithCause(errors.Join(errors.ErrDeliveryTimeout, err))
		}
		return report(err)
	}
	res.RecordID = rec.ID
	res.Delivery = DeliveryPublished

	if !c.cfg.Follower.RequireAck {
		return report(nil)
	}

	accepted, err := c.awaitAck(ctx, ch, rec.ID, published)
	switch {
	case err != nil:
		res.Delivery = DeliveryLeaderUnreachable
	case accepted:
		res.Delivery = DeliveryAcknowledged
	default:
		res.Delivery = DeliveryRejected
	}
	return report(err)
}

// openWithRetry opens the identity's channel, retrying every failure until
// follower.max_attempts is reached. It returns the number of attempts made.
func (c *Coordinator) openWithRetry(ctx context.Context) (*channel.Channel, int, error) {
	name := c.id.ChannelName()
	maxAttempts := c.cfg.Follower.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	counter := backoff.Counter{Strategy: retryStrategy(c.cfg.Follower)}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ch, err := c.open(name, c.channelOptions()...)
		if err == nil {
			if attempt > 1 {
				c.logger.Debug("channel opened after retries", "attempts", attempt)
			}
			return ch, attempt, nil
		}
		lastErr = err

		c.logger.Debug("channel open failed",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", err.Error(),
		)
		c.bus.Publish(event.NewChannelRetryEvent(name, attempt, maxAttempts, err.Error()))

		if attempt == maxAttempts {
			break
		}
		if err := counter.Sleep(ctx, err); err != nil {
			return nil, attempt, err
		}
	}

	return nil, maxAttempts, errors.NewChannelError("open channel", errors.Join(errors.ErrChannelUnavailable, lastErr)).
		WithChannel(name).
		WithAttempt(maxAttempts).
		WithRetryable(false)
}

// awaitAck waits for the leader's acknowledgment of the batch with ID ref.
func (c *Coordinator) awaitAck(ctx context.Context, ch *channel.Channel, ref string, since time.Time) (bool, error) {
	acks := make(chan bool, 1)
	cancel, err := ch.Subscribe(since, func(rec channel.Record) {
		if rec.Kind != channel.KindAck || rec.Ref != ref || rec.Accepted == nil {
			return
		}
		select {
		case acks <- *rec.Accepted:
		default:
		}
	})
	if err != nil {
		return false, err
	}
	defer cancel()

	timeout := c.cfg.Follower.AckTimeout
	ackCtx, stop := context.WithTimeout(ctx, timeout)
	defer stop()

	select {
	case accepted := <-acks:
		return accepted, nil
	case <-ackCtx.Done():
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, errors.NewTimeoutError("waiting for leader acknowledgment", timeout).
			WithCause(errors.ErrLeaderUnreachable)
	}
}

// retryStrategy doubles the delay from backoff_initial on every attempt,
// capped at backoff_max, with optional full jitter.
func retryStrategy(f config.FollowerConfig) backoff.Strategy {
	doubling := func(_ error, n uint) time.Duration {
		d := f.BackoffInitial
		for i := uint(0); i < n && d < f.BackoffMax; i++ {
			d *= 2
		}
		return d
	}

	var transforms []linger.DurationTransform
	if f.Jitter {
		transforms = append(transforms, linger.FullJitter)
	}
	transforms = append(transforms, linger.Limiter(0, f.BackoffMax))

	return backoff.WithTransforms(doubling, transforms...)
}
