// Package lockutil implements the single-writer exclusive lock described
// in spec.md §4.4: O_CREAT|O_EXCL creation, stale-owner detection via a
// signal-0 probe, and a bounded acquisition deadline.
package lockutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// AcquireTimeout is the total bound on acquisition, including the single
// retry after stale-owner removal (spec.md §4.4).
const AcquireTimeout = 30 * time.Second

// ErrUnavailable is returned when the lock is held by a live process.
var ErrUnavailable = errors.New("lockutil: lock held by another process")

// ErrTimeout is returned when acquisition exceeds AcquireTimeout.
var ErrTimeout = errors.New("lockutil: acquisition timed out")

// ErrMalformed is returned when an existing lock file cannot be
// interpreted; this is fatal and requires manual intervention.
var ErrMalformed = errors.New("lockutil: lock file is malformed, remove it manually")

// Guard represents a held lock. Release must be called exactly once,
// typically via defer, on every exit path including signal-driven
// termination.
type Guard struct {
	path string
	file *os.File
}

// Path returns the lock file path this guard holds.
func (g *Guard) Path() string { return g.path }

// Release unlocks and removes the lock file. It is safe to call multiple
// times; only the first call has effect.
func (g *Guard) Release() error {
	if g.file == nil {
		return nil
	}
	f := g.file
	g.file = nil
	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		f.Close()
		return fmt.Errorf("lockutil: unlock %s: %w", g.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("lockutil: close %s: %w", g.path, err)
	}
	if err := os.Remove(g.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("lockutil: remove %s: %w", g.path, err)
	}
	return nil
}

// Acquire creates path exclusively, writes the current PID into it, and
// places an advisory write lock on the descriptor. If the file already
// exists, its recorded owner is probed with signal 0; if that process is
// no longer alive, the stale file is removed and acquisition is retried
// exactly once. The whole operation, including the retry, is bounded by
// AcquireTimeout.
func Acquire(ctx context.Context, path string) (*Guard, error) {
	deadline := time.Now().Add(AcquireTimeout)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	g, err := tryAcquire(path)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, ErrUnavailable) {
		return nil, err
	}

	if staleErr := tryRemoveStale(path); staleErr != nil {
		return nil, staleErr
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s", ErrTimeout, path)
	default:
	}

	g, err = tryAcquire(path)
	if err != nil {
		if errors.Is(err, ErrUnavailable) && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, path)
		}
		return nil, err
	}
	return g, nil
}

func tryAcquire(path string) (*Guard, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, path)
		}
		return nil, fmt.Errorf("lockutil: create %s: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("lockutil: flock %s: %w", path, err)
	}

	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("lockutil: write pid to %s: %w", path, err)
	}

	return &Guard{path: path, file: f}, nil
}

// tryRemoveStale reads the PID recorded in an existing lock file and
// removes the file if that process no longer exists. A malformed or
// unreadable file is reported as ErrMalformed rather than silently
// removed, per spec.md §4.4.
func tryRemoveStale(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Released between our failed create and this read; nothing
			// to clean up, the next acquire attempt will just work.
			return nil
		}
		return fmt.Errorf("%w: reading %s: %v", ErrMalformed, path, err)
	}

	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return fmt.Errorf("%w: %s contains %q", ErrMalformed, path, pidStr)
	}

	if processAlive(pid) {
		return fmt.Errorf("%w: %s held by live pid %d", ErrUnavailable, path, pid)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("lockutil: remove stale %s: %w", path, err)
	}
	return nil
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	if err == nil {
		return true
	}
	return !errors.Is(err, unix.ESRCH)
}
