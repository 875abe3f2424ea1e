// Package lock provides the cross-process exclusive lock that decides
// leadership. The lock is an advisory OS file lock (flock(2) on Unix,
// LockFileEx on Windows) held on an open descriptor, so the operating system
// releases it when the holding process exits for any reason, including a
// crash.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/Iron-Ham/singleton/internal/errors"
)

// FileLock is an exclusive lock on a named file. A FileLock value is safe
// for concurrent use, but the lock is owned by the process, not the
// goroutine.
//
// Two FileLock values for the same path in the same process contend with
// each other exactly like two processes would, because each holds its own
// open file description.
type FileLock struct {
	path string

	mu    sync.Mutex
	file  *os.File
	owner bool // WriteOwner recorded our pid
}

// New creates a FileLock for path. Nothing is opened until TryLock or Lock.
func New(path string) *FileLock {
	return &FileLock{path: path}
}

// Path returns the lock file path.
func (fl *FileLock) Path() string {
	return fl.path
}

// TryLock attempts to acquire the lock without blocking. It returns true if
// the lock was acquired and false if another holder has it. Calling TryLock
// while already holding the lock returns true.
func (fl *FileLock) TryLock() (bool, error) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.file != nil {
		return true, nil
	}

	f, err := fl.open()
	if err != nil {
		return false, err
	}

	ok, err := tryLockFile(f)
	if err != nil || !ok {
		_ = f.Close()
		if err != nil {
			return false, fmt.Errorf("lock %s: %w", fl.path, err)
		}
		return false, nil
	}

	fl.file = f
	return true, nil
}

// Lock acquires the lock, blocking until it is available.
func (fl *FileLock) Lock() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.file != nil {
		return nil
	}

	f, err := fl.open()
	if err != nil {
		return err
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("lock %s: %w", fl.path, err)
	}

	fl.file = f
	return nil
}

// Unlock releases the lock and closes the lock file. Unlocking a lock that
// is not held is a no-op.
func (fl *FileLock) Unlock() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.file == nil {
		return nil
	}

	if fl.owner {
		// Clear the pid while still holding the lock so a stale pid never
		// outlives a clean release.
		_ = fl.file.Truncate(0)
		fl.owner = false
	}
	unlockErr := unlockFile(fl.file)
	closeErr := fl.file.Close()
	fl.file = nil

	if unlockErr != nil {
		return fmt.Errorf("unlock %s: %w", fl.path, unlockErr)
	}
	return closeErr
}

// Held reports whether this FileLock currently holds the lock.
func (fl *FileLock) Held() bool {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return fl.file != nil
}

// WriteOwner records the current PID in the lock file for diagnostics. The
// lock itself does not depend on the file contents.
func (fl *FileLock) WriteOwner() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.file == nil {
		return errors.ErrLockNotHeld
	}
	if err := fl.file.Truncate(0); err != nil {
		return fmt.Errorf("truncate lock file: %w", err)
	}
	if _, err := fl.file.WriteAt(fmt.Appendf(nil, "%d\n", os.Getpid()), 0); err != nil {
		return fmt.Errorf("write lock owner: %w", err)
	}
	fl.owner = true
	return nil
}

func (fl *FileLock) open() (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(fl.path), 0o700); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	f, err := os.OpenFile(fl.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	return f, nil
}

// ReadOwner returns the PID last recorded by WriteOwner in the lock file at
// path. The value is stale once the owner has exited.
func ReadOwner(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse lock owner: %w", err)
	}
	return pid, nil
}

// Owner reports the pid recorded in the lock file at path and whether that
// process is still running. It never touches the lock, so it cannot disturb
// an election. A missing or empty file reports pid 0, not running.
//
// The answer can lag: a new holder is invisible until it calls WriteOwner,
// and a recycled pid of a crashed holder reads as running.
func Owner(path string) (pid int, running bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0, false, nil
	}
	pid, err = strconv.Atoi(text)
	if err != nil {
		return 0, false, fmt.Errorf("parse lock owner: %w", err)
	}
	return pid, pid > 0 && processAlive(pid), nil
}
