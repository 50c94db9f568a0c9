package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestNew_Validation(t *testing.T) {
	dir := t.TempDir()

	_, err := New(filepath.Join(dir, "missing.py"), 0, nil)
	require.Error(t, err)

	_, err = New(dir, 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")

	file := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	w, err := New(file, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.debounce)
}

// startWatcher runs w in the background and returns a channel signalled on
// every callback plus a stop function that waits for Run to return.
func startWatcher(t *testing.T, w *Watcher, onChange func(context.Context) error) (stop func() error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, onChange) }()
	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	return func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("watcher did not stop")
			return nil
		}
	}
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	file := filepath.Join(dir, "script.py")
	require.NoError(t, os.WriteFile(file, []byte("print(1)"), 0o644))

	w, err := New(file, 200*time.Millisecond, nil)
	require.NoError(t, err)

	var calls atomic.Int32
	called := make(chan struct{}, 10)
	stop := startWatcher(t, w, func(context.Context) error {
		calls.Add(1)
		called <- struct{}{}
		return nil
	})

	require.NoError(t, os.WriteFile(file, []byte("print(2)"), 0o644))
	require.NoError(t, os.WriteFile(file, []byte("print(3)"), 0o644))

	select {
	case <-called:
	case <-time.After(5 * time.Second):
		t.Fatal("onChange was not called")
	}
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "writes within the debounce window are coalesced")

	require.NoError(t, stop())
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	file := filepath.Join(dir, "script.py")
	require.NoError(t, os.WriteFile(file, []byte("print(1)"), 0o644))

	w, err := New(file, 50*time.Millisecond, nil)
	require.NoError(t, err)

	var calls atomic.Int32
	stop := startWatcher(t, w, func(context.Context) error {
		calls.Add(1)
		return errors.New("logged, not fatal")
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.py"), []byte("x"), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	require.NoError(t, os.WriteFile(file, []byte("print(2)"), 0o644))
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, stop())
}
