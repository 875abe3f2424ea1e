package singleton

// Activator receives argument batches forwarded by followers. It is called
// on the channel's delivery goroutine, one batch at a time, so an
// implementation driving a UI must redispatch to its own event loop.
type Activator interface {
	SignalExternalCommandLineArgs(args []string) bool
}

// ActivatorFunc adapts a function to the Activator interface.
type ActivatorFunc func(args []string) bool

// SignalExternalCommandLineArgs implements Activator.
func (f ActivatorFunc) SignalExternalCommandLineArgs(args []string) bool {
	return f(args)
}

// Role is the part a process plays after initialization.
type Role int

const (
	// RoleNone means the coordinator has not decided a role.
	RoleNone Role = iota
	// RoleLeader means this process holds the leadership lock.
	RoleLeader
	// RoleFollower means another process holds the leadership lock.
	RoleFollower
)

// String returns the lower-case name of the role.
func (r Role) String() string {
	switch r {
	case RoleLeader:
		return "leader"
	case RoleFollower:
		return "follower"
	default:
		return "none"
	}
}

// Delivery is the outcome of a follower's attempt to forward its arguments.
type Delivery int

const (
	// DeliveryNone applies to leaders, which forward nothing.
	DeliveryNone Delivery = iota
	// DeliveryPublished means the batch is in the channel. Nothing is known
	// about whether the leader has processed it.
	DeliveryPublished
	// DeliveryAcknowledged means the leader's activator accepted the batch.
	DeliveryAcknowledged
	// DeliveryRejected means the leader's activator returned false.
	DeliveryRejected
	// DeliveryLeaderUnreachable means the batch was published but no
	// acknowledgment arrived in time.
	DeliveryLeaderUnreachable
	// DeliveryGaveUp means the batch was never published.
	DeliveryGaveUp
)

// String returns a short name for the delivery outcome.
func (d Delivery) String() string {
	switch d {
	case DeliveryNone:
		return "none"
	case DeliveryPublished:
		return "published"
	case DeliveryAcknowledged:
		return "acknowledged"
	case DeliveryRejected:
		return "rejected"
	case DeliveryLeaderUnreachable:
		return "leader-unreachable"
	case DeliveryGaveUp:
		return "gave-up"
	default:
		return "unknown"
	}
}

// Result reports what Initialize decided and, for followers, how delivery
// went.
type Result struct {
	Role     Role
	Delivery Delivery
	// RecordID identifies the published batch. Empty unless published.
	RecordID string
	// Attempts is the number of channel-open attempts made.
	Attempts int
}

// IsLeader reports whether the process became leader.
func (r Result) IsLeader() bool {
	return r.Role == RoleLeader
}
