// Package event provides a pub-sub event bus for observing the lifecycle of
// a single-instance coordinator.
//
// The coordinator publishes events as it elects a leader, forwards argument
// batches and releases its resources. The terminal UI and tests subscribe
// to them instead of reaching into coordinator internals.
//
// # Main Types
//
//   - [Event]: Interface that all events implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub dispatcher, safe for concurrent use
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Types
//
//   - [LeaderElectedEvent] (leader.elected)
//   - [FollowerSignaledEvent] (follower.signaled)
//   - [BatchReceivedEvent] (batch.received)
//   - [BatchDroppedEvent] (batch.dropped)
//   - [ChannelRetryEvent] (channel.retry)
//   - [InstanceCleanupEvent] (instance.cleanup)
//
// # Basic Usage
//
//	bus := event.NewBus(logger)
//
//	bus.Subscribe(event.TypeBatchReceived, func(e event.Event) {
//	    batch := e.(event.BatchReceivedEvent)
//	    log.Printf("batch from %d: %v", batch.FromPID, batch.Args)
//	})
//
//	id := bus.SubscribeAll(func(e event.Event) {
//	    log.Printf("event: %s at %v", e.EventType(), e.Timestamp())
//	})
//	defer bus.Unsubscribe(id)
//
// Handlers run synchronously on the publishing goroutine. A panicking
// handler is recovered and logged and does not stop delivery to the others.
package event
