package channel

import "time"

// Kind identifies what a record carries.
type Kind string

const (
	// KindBatch carries an encoded argument batch from a follower.
	KindBatch Kind = "batch"

	// KindAck is the leader's acknowledgment of a batch. Ref names the
	// batch record and Accepted carries the activation callback's answer.
	KindAck Kind = "ack"
)

// Record is one entry in the channel log.
type Record struct {
	ID        string    `json:"id"`
	Seq       uint64    `json:"seq"`
	Kind      Kind      `json:"kind"`
	FromPID   int       `json:"from_pid"`
	Ref       string    `json:"ref,omitempty"`
	Accepted  *bool     `json:"accepted,omitempty"`
	Payload   []byte    `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler receives records delivered by a subscription.
type Handler func(Record)
