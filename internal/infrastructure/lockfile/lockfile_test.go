package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLock_AcquireAndRelease(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "bob.lock")
	lock := New(path)

	// Act
	require.NoError(t, lock.Acquire())

	// Assert
	assert.True(t, lock.Held())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d\n", os.Getpid()), string(data))

	require.NoError(t, lock.Release())
	assert.False(t, lock.Held())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLock_HeldByLiveProcess(t *testing.T) {
	// Arrange: the parent process is alive for the duration of the test
	path := filepath.Join(t.TempDir(), "bob.lock")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getppid())), 0o644))

	// Act
	err := New(path).Acquire()

	// Assert
	assert.True(t, errors.Is(err, ErrLocked))
}

func TestLock_TakesOverStaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bob.lock")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid\n"), 0o644))

	lock := New(path)

	require.NoError(t, lock.Acquire())
	assert.True(t, lock.Held())
}

func TestLock_EmptyPathAlwaysSucceeds(t *testing.T) {
	lock := New("")

	assert.NoError(t, lock.Acquire())
	assert.False(t, lock.Held())
	assert.NoError(t, lock.Release())
}

func TestLock_ReleaseWithoutAcquireIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bob.lock")
	require.NoError(t, os.WriteFile(path, []byte("1\n"), 0o644))

	require.NoError(t, New(path).Release())

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
