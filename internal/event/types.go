package event

import "time"

// Event is the interface that all events implement.
type Event interface {
	// EventType returns the "category.action" identifier of the event.
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeLeaderElected   = "leader.elected"
	TypeFollowerSignal  = "follower.signaled"
	TypeBatchReceived   = "batch.received"
	TypeBatchDropped    = "batch.dropped"
	TypeChannelRetry    = "channel.retry"
	TypeInstanceCleanup = "instance.cleanup"
)

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Election Events
// -----------------------------------------------------------------------------

// LeaderElectedEvent is emitted when this process acquires the leadership
// token and starts listening on the channel.
type LeaderElectedEvent struct {
	baseEvent
	Identity string // Scoped identity name
	Channel  string // Channel the leader subscribed to
	LockPath string // Path of the leadership lock file
	PID      int
}

// NewLeaderElectedEvent creates a LeaderElectedEvent.
func NewLeaderElectedEvent(identity, channel, lockPath string, pid int) LeaderElectedEvent {
	return LeaderElectedEvent{
		baseEvent: newBaseEvent(TypeLeaderElected),
		Identity:  identity,
		Channel:   channel,
		LockPath:  lockPath,
		PID:       pid,
	}
}

// FollowerSignaledEvent is emitted by a follower once its delivery attempt
// has finished, whatever the outcome.
type FollowerSignaledEvent struct {
	baseEvent
	Identity string
	Args     []string
	RecordID string // Empty when nothing was published
	Delivery string // Delivery outcome, e.g. "published" or "gave-up"
	Error    string // Error message, if the delivery failed
}

// NewFollowerSignaledEvent creates a FollowerSignaledEvent.
func NewFollowerSignaledEvent(identity string, args []string, recordID, delivery, errMsg string) FollowerSignaledEvent {
	return FollowerSignaledEvent{
		baseEvent: newBaseEvent(TypeFollowerSignal),
		Identity:  identity,
		Args:      args,
		RecordID:  recordID,
		Delivery:  delivery,
		Error:     errMsg,
	}
}

// -----------------------------------------------------------------------------
// Leader Receive Events
// -----------------------------------------------------------------------------

// BatchReceivedEvent is emitted after the leader has handed a forwarded
// argument batch to the activator.
type BatchReceivedEvent struct {
	baseEvent
	RecordID string
	Seq      uint64
	FromPID  int
	Args     []string
	Accepted bool // Value returned by the activator
	Panicked bool // The activator panicked; Accepted is false
}

// NewBatchReceivedEvent creates a BatchReceivedEvent.
func NewBatchReceivedEvent(recordID string, seq uint64, fromPID int, args []string, accepted, panicked bool) BatchReceivedEvent {
	return BatchReceivedEvent{
		baseEvent: newBaseEvent(TypeBatchReceived),
		RecordID:  recordID,
		Seq:       seq,
		FromPID:   fromPID,
		Args:      args,
		Accepted:  accepted,
		Panicked:  panicked,
	}
}

// BatchDroppedEvent is emitted when the leader receives a payload it cannot
// decode. The activator is not invoked.
type BatchDroppedEvent struct {
	baseEvent
	RecordID string
	FromPID  int
	Reason   string
}

// NewBatchDroppedEvent creates a BatchDroppedEvent.
func NewBatchDroppedEvent(recordID string, fromPID int, reason string) BatchDroppedEvent {
	return BatchDroppedEvent{
		baseEvent: newBaseEvent(TypeBatchDropped),
		RecordID:  recordID,
		FromPID:   fromPID,
		Reason:    reason,
	}
}

// -----------------------------------------------------------------------------
// Channel Events
// -----------------------------------------------------------------------------

// ChannelRetryEvent is emitted each time a follower fails to open the
// message channel and is about to retry.
type ChannelRetryEvent struct {
	baseEvent
	Channel     string
	Attempt     int // 1-based attempt that just failed
	MaxAttempts int
	Error       string
}

// NewChannelRetryEvent creates a ChannelRetryEvent.
func NewChannelRetryEvent(channel string, attempt, maxAttempts int, errMsg string) ChannelRetryEvent {
	return ChannelRetryEvent{
		baseEvent:   newBaseEvent(TypeChannelRetry),
		Channel:     channel,
		Attempt:     attempt,
		MaxAttempts: maxAttempts,
		Error:       errMsg,
	}
}

// -----------------------------------------------------------------------------
// Lifecycle Events
// -----------------------------------------------------------------------------

// InstanceCleanupEvent is emitted when a coordinator releases its
// resources.
type InstanceCleanupEvent struct {
	baseEvent
	Identity string
	Role     string // "leader", "follower" or "none"
}

// NewInstanceCleanupEvent creates an InstanceCleanupEvent.
func NewInstanceCleanupEvent(identity, role string) InstanceCleanupEvent {
	return InstanceCleanupEvent{
		baseEvent: newBaseEvent(TypeInstanceCleanup),
		Identity:  identity,
		Role:      role,
	}
}
