package channel

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/singleton/internal/errors"
)

// Subscribe starts delivering records to handler. Every record with a
// timestamp at or after since is delivered exactly once, in sequence order,
// on a dedicated goroutine. Records published before since are skipped.
//
// The returned cancel function stops the subscription without waiting for
// an in-flight handler call. Close waits for every subscription to exit.
func (c *Channel) Subscribe(since time.Time, handler Handler) (cancel func(), err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errors.NewChannelError("subscribe", errors.ErrChannelClosed).WithChannel(c.name).WithRetryable(false)
	}
	c.subs.Add(1)
	c.mu.Unlock()

	// Watching is best-effort; the poll ticker covers platforms or
	// filesystems where notifications are unavailable.
	watcher, werr := fsnotify.NewWatcher()
	if werr == nil {
		if werr = watcher.Add(c.dir); werr != nil {
			_ = watcher.Close()
			watcher = nil
		}
	}
	if werr != nil {
		c.logger.Warn("filesystem notifications unavailable, polling", "error", werr.Error())
	}

	stop := make(chan struct{})
	var once sync.Once

	go func() {
		defer c.subs.Done()
		if watcher != nil {
			defer func() { _ = watcher.Close() }()
		}
		c.deliverLoop(since, handler, watcher, stop)
	}()

	return func() {
		once.Do(func() { close(stop) })
	}, nil
}

func (c *Channel) deliverLoop(since time.Time, handler Handler, watcher *fsnotify.Watcher, stop <-chan struct{}) {
	var lastSeq uint64
	consecutiveErrors := 0

	drain := func() {
		records, err := readRecords(c.logPath)
		if err != nil {
			consecutiveErrors++
			if consecutiveErrors == maxReadErrors {
				c.logger.Error("channel log unreadable", "error", err.Error(), "attempts", consecutiveErrors)
			}
			return
		}
		consecutiveErrors = 0

		for _, rec := range records {
			if rec.Seq <= lastSeq {
				continue
			}
			lastSeq = rec.Seq
			if rec.Timestamp.Before(since) {
				continue
			}
			select {
			case <-stop:
				return
			case <-c.done:
				return
			default:
			}
			handler(rec)
		}
	}

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if watcher != nil {
		events = watcher.Events
		watchErrs = watcher.Errors
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	drain()
	for {
		select {
		case <-stop:
			return
		case <-c.done:
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Base(ev.Name) != logFileName || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			drain()
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			c.logger.Warn("channel watcher error", "error", err.Error())
		case <-ticker.C:
			drain()
		}
	}
}

// maxReadErrors is the number of consecutive failed reads before the
// subscriber logs at error level.
const maxReadErrors = 5
