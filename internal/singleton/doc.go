// Package singleton elects one leader among concurrently launched instances
// of an application and forwards the command line of every later instance
// to that leader.
//
// A [Coordinator] is constructed once by the process entry point. Its
// [Coordinator.Initialize] method makes a single non-blocking attempt to
// take the leadership lock for the identity (token + user):
//
//   - The winner becomes the leader. It keeps the lock and a subscription on
//     the identity's message channel for its whole lifetime, and hands every
//     forwarded argument batch to the [Activator].
//   - Every other process is a follower. It opens the channel (retrying with
//     backoff), publishes its own arguments, waits for the publish to be
//     confirmed and, when configured, for the leader's acknowledgment. The
//     caller then exits the process.
//
// [Coordinator.Cleanup] releases the subscription, the channel and the lock.
// If the leader dies without calling it, the operating system releases the
// lock and the next instance to start becomes leader.
//
// # Basic Usage
//
//	coord := singleton.New(*cfg, "com.example.viewer", activator,
//	    singleton.WithLogger(logger))
//	defer coord.Cleanup()
//
//	if !coord.InitializeAsFirstInstance(ctx) {
//	    return // arguments were forwarded to the running instance
//	}
//	runApplication()
package singleton
