package rowstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// locksDirName is the subdirectory for lock files, kept next to the table so
// the table file itself is never opened for locking.
const locksDirName = ".locks"

// DefaultLockTimeout bounds how long a writer waits for a table lock.
const DefaultLockTimeout = 2 * time.Second

const lockPollInterval = 10 * time.Millisecond

const (
	dirPerms  = 0o750
	filePerms = 0o600
)

var (
	// ErrLockTimeout is returned when the lock could not be acquired in time.
	ErrLockTimeout  = errors.New("lock timeout")
	errLockFileOpen = errors.New("failed to open lock file")
)

// TableLock serializes writers of one table file across processes with an
// exclusive flock on <dir>/.locks/<base>.lock. Readers never take it: the
// table is only ever replaced by rename, so a reader sees either version.
type TableLock struct {
	table   string
	path    string
	timeout time.Duration
}

// NewTableLock returns the lock for the table at tablePath. A timeout <= 0
// means [DefaultLockTimeout].
func NewTableLock(tablePath string, timeout time.Duration) *TableLock {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}

	return &TableLock{
		table:   tablePath,
		path:    filepath.Join(filepath.Dir(tablePath), locksDirName, filepath.Base(tablePath)+".lock"),
		timeout: timeout,
	}
}

// Path returns the lock file path.
func (l *TableLock) Path() string {
	return l.path
}

// Do runs handler while holding the lock.
func (l *TableLock) Do(handler func() error) error {
	held, err := l.acquire()
	if err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}

	defer held.release()

	return handler()
}

// acquire polls a non-blocking flock until it is granted or the timeout
// passes. A grant on a lock file that a previous holder already unlinked is
// dropped and retried on a fresh file.
func (l *TableLock) acquire() (*heldLock, error) {
	err := os.MkdirAll(filepath.Dir(l.path), dirPerms)
	if err != nil {
		return nil, fmt.Errorf("creating locks dir: %w", err)
	}

	deadline := time.Now().Add(l.timeout)

	for {
		held, err := l.tryAcquire()
		if err != nil || held != nil {
			return held, err
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w after %s: %s", ErrLockTimeout, l.timeout, l.table)
		}

		time.Sleep(lockPollInterval)
	}
}

// tryAcquire makes one attempt. It returns nil, nil when the lock is busy
// or the file it locked is stale.
func (l *TableLock) tryAcquire() (*heldLock, error) {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, filePerms)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errLockFileOpen, err)
	}

	fd := int(file.Fd())

	err = unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB)
	if errors.Is(err, unix.EWOULDBLOCK) {
		_ = file.Close()

		return nil, nil
	}

	if err != nil {
		_ = file.Close()

		return nil, fmt.Errorf("flock: %w", err)
	}

	if !l.isCurrent(fd) {
		_ = unix.Flock(fd, unix.LOCK_UN)
		_ = file.Close()

		return nil, nil
	}

	return &heldLock{path: l.path, file: file}, nil
}

// isCurrent reports whether fd still refers to the file at the lock path.
func (l *TableLock) isCurrent(fd int) bool {
	var opened, onDisk unix.Stat_t

	if unix.Fstat(fd, &opened) != nil || unix.Stat(l.path, &onDisk) != nil {
		return false
	}

	return opened.Dev == onDisk.Dev && opened.Ino == onDisk.Ino
}

type heldLock struct {
	path string
	file *os.File
}

// release removes the lock file while still holding the lock, then unlocks.
func (h *heldLock) release() {
	_ = os.Remove(h.path)
	_ = unix.Flock(int(h.file.Fd()), unix.LOCK_UN)
	_ = h.file.Close()
}
