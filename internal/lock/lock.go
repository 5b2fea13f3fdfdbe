package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("another instance is already running")

// Lock is a held instance lock.
type Lock struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// Acquire opens or creates the PID file at path, takes an exclusive
// non-blocking lock on it and writes the current PID. It returns an error
// wrapping ErrLocked if another process holds the lock.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := flock(f); err != nil {
		_ = f.Close()
		return nil, lockError(path, err)
	}

	if err := writePID(f, os.Getpid()); err != nil {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		_ = f.Close()
		return nil, err
	}

	return &Lock{path: path, file: f}, nil
}

// Path returns the PID file path.
func (l *Lock) Path() string {
	return l.path
}

// Release removes the PID file and drops the lock. Safe to call multiple times.
func (l *Lock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	var errs []error
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		errs = append(errs, fmt.Errorf("failed to remove lock file: %w", err))
	}
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		errs = append(errs, fmt.Errorf("failed to unlock: %w", err))
	}
	if err := l.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close lock file: %w", err))
	}
	l.file = nil

	return errors.Join(errs...)
}

// Probe reports whether the lock at path is free without keeping it. A
// missing file is free. When the lock is held the error wraps ErrLocked.
func Probe(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open lock file: %w", err)
	}
	defer f.Close()

	if err := flock(f); err != nil {
		return lockError(path, err)
	}
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
	return nil
}

// ReadPID returns the PID recorded in the file at path.
func ReadPID(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file content: %w", err)
	}
	return pid, nil
}

func flock(f *os.File) error {
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err != unix.EINTR {
			return err
		}
	}
}

func lockError(path string, err error) error {
	if errors.Is(err, unix.EWOULDBLOCK) {
		if pid, perr := ReadPID(path); perr == nil && pid > 0 {
			return fmt.Errorf("%w (pid %d)", ErrLocked, pid)
		}
		return ErrLocked
	}
	return fmt.Errorf("failed to lock %s: %w", path, err)
}

func writePID(f *os.File, pid int) error {
	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate lock file: %w", err)
	}
	if _, err := f.WriteAt([]byte(strconv.Itoa(pid)+"\n"), 0); err != nil {
		return fmt.Errorf("failed to write PID: %w", err)
	}
	return nil
}
