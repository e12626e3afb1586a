package lockfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// ErrLocked is returned when another live process holds the lock
var ErrLocked = errors.New("profile is locked by another bob process")

// Lock serializes CLI sessions that write a configuration profile back.
// The file holds the owner's process ID; a lock whose owner has exited is
// taken over.
type Lock struct {
	path string
	held bool
}

// New creates a lock at path. An empty path yields a lock that always succeeds.
func New(path string) *Lock {
	return &Lock{path: path}
}

// Acquire takes the lock, failing with ErrLocked while its owner runs
func (l *Lock) Acquire() error {
	if l.path == "" || l.held {
		return nil
	}
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
			cerr := f.Close()
			if werr != nil || cerr != nil {
				_ = os.Remove(l.path)
				return fmt.Errorf("failed to write lock file: %w", errors.Join(werr, cerr))
			}
			l.held = true
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("failed to create lock file: %w", err)
		}

		owner, ok := l.owner()
		if ok && owner != os.Getpid() && alive(owner) {
			return fmt.Errorf("%w (pid %d, %s)", ErrLocked, owner, l.path)
		}
		// Stale or unreadable
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale lock file: %w", err)
		}
	}
	return fmt.Errorf("%w (%s)", ErrLocked, l.path)
}

// Release drops the lock if this process holds it
func (l *Lock) Release() error {
	if !l.held {
		return nil
	}
	l.held = false
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// Held reports whether this process holds the lock
func (l *Lock) Held() bool {
	return l.held
}

func (l *Lock) owner() (int, bool) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// alive probes pid with signal 0. EPERM means the process exists under
// another user.
func alive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
