// Package logging provides structured logging for singleton processes.
//
// It wraps log/slog with a JSON handler and a small amount of context
// plumbing: child loggers carry persistent attributes (the identity being
// coordinated, the role this process took) so that the interleaved logs of a
// leader and its followers can be told apart after the fact.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger(dir, logging.LevelInfo, logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	log := logger.WithIdentity(id.Name()).WithRole("leader")
//	log.Info("batch received", "args", len(args))
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"batch received","identity":"app:alice","role":"leader","args":2}
//
// # Log Rotation
//
// The leader lives as long as the application, so file output goes through a
// [RotatingWriter]. When the file exceeds MaxSizeMB it is renamed to
// singleton.log.1 (older backups shift up, the oldest beyond MaxBackups is
// removed) and optionally gzip compressed.
//
// # Testing
//
// Use [NopLogger] to discard output. Library packages default to it when no
// logger is supplied.
//
// # Thread Safety
//
// [Logger] and [RotatingWriter] are safe for concurrent use. Child loggers
// share the parent's writer.
package logging
