//go:build windows

package lock

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

// The lock is a single byte far past the recorded pid, so other processes
// can still read the owner while the lock is held.
const (
	lockOffset    = 1 << 30
	lockBytesLow  = 1
	lockBytesHigh = 0
)

// stillActive is the exit code GetExitCodeProcess reports for a live process.
const stillActive = 259

func lockRange() *windows.Overlapped {
	return &windows.Overlapped{Offset: lockOffset}
}

func tryLockFile(f *os.File) (bool, error) {
	ol := lockRange()
	err := windows.LockFileEx(windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0, lockBytesLow, lockBytesHigh, ol)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
		return false, nil
	}
	return false, err
}

func lockFile(f *os.File) error {
	ol := lockRange()
	return windows.LockFileEx(windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK, 0, lockBytesLow, lockBytesHigh, ol)
}

func unlockFile(f *os.File) error {
	ol := lockRange()
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, lockBytesLow, lockBytesHigh, ol)
}

func processAlive(pid int) bool {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return errors.Is(err, windows.ERROR_ACCESS_DENIED)
	}
	defer windows.CloseHandle(h)

	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return false
	}
	return code == stillActive
}
