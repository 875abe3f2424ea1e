// Package channel implements the named message channel that carries
// forwarded argument batches from followers to the leader.
//
// # Architecture
//
// A channel is a directory shared by every process that opens the same name:
//
//	{dir}/{file key of name}.channel/
//	    log.jsonl  -- append-only JSONL log of records
//	    log.lock   -- cross-process write guard (flock)
//
// Publishers append one [Record] per line while holding the write guard and
// assign each record the next sequence number. Subscribers watch the
// directory with fsnotify (falling back to a poll ticker) and deliver every
// record they have not seen yet, in sequence order, on a single goroutine.
//
// Records older than the minimum message age are pruned by publishers so
// the log stays small; the newest record is always kept so sequence numbers
// never go backwards.
//
// # Handles
//
// A [Channel] is a view onto the shared directory. The leader keeps one open
// for its whole life and subscribes to it. A follower opens one, publishes a
// single batch, waits for [Channel.WaitPublished] to confirm, and closes it.
//
// # Thread Safety
//
// All [Channel] methods are safe for concurrent use. Subscription handlers
// run on the subscription's goroutine and must not call the returned cancel
// function or [Channel.Close] themselves.
package channel
