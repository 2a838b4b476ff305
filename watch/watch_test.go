package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/plugmig/errors"
)

func newWatched(t *testing.T, debounce time.Duration) (*Watcher, string) {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "plugin.ts")
	require.NoError(t, os.WriteFile(file, []byte("v1"), 0644))

	w, err := New(file, debounce)
	require.NoError(t, err)
	return w, file
}

func start(t *testing.T, w *Watcher, fn Func) (cancel func()) {
	t.Helper()
	ctx, cancelCtx := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, fn) }()

	return func() {
		cancelCtx()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("Run did not return after cancel")
		}
	}
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "plugin.ts"), time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch")
}

func TestFileIsAbsolute(t *testing.T) {
	w, file := newWatched(t, time.Millisecond)
	defer w.Close()

	assert.Equal(t, file, w.File())
	assert.True(t, filepath.IsAbs(w.File()))
}

func TestRunOnChange(t *testing.T) {
	w, file := newWatched(t, 20*time.Millisecond)

	calls := make(chan struct{}, 10)
	stop := start(t, w, func(context.Context) error {
		calls <- struct{}{}
		return nil
	})
	defer stop()

	require.NoError(t, os.WriteFile(file, []byte("v2"), 0644))

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("no run after the file changed")
	}
}

func TestRunIgnoresOtherFiles(t *testing.T) {
	w, file := newWatched(t, 20*time.Millisecond)

	var calls atomic.Int32
	stop := start(t, w, func(context.Context) error {
		calls.Add(1)
		return nil
	})
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(file), "other.ts"), []byte("x"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	require.NoError(t, os.WriteFile(file, []byte("v2"), 0644))
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestRunContinuesAfterError(t *testing.T) {
	w, file := newWatched(t, 20*time.Millisecond)

	var calls atomic.Int32
	stop := start(t, w, func(context.Context) error {
		calls.Add(1)
		return errors.New("migration failed")
	})
	defer stop()

	require.NoError(t, os.WriteFile(file, []byte("v2"), 0644))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(file, []byte("v3"), 0644))
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduleDebounces(t *testing.T) {
	w, _ := newWatched(t, 50*time.Millisecond)
	defer w.Close()

	for i := 0; i < 5; i++ {
		w.schedule()
	}

	select {
	case <-w.trigger:
	case <-time.After(time.Second):
		t.Fatal("debounced trigger never fired")
	}

	select {
	case <-w.trigger:
		t.Fatal("burst produced more than one trigger")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	w, _ := newWatched(t, time.Millisecond)

	stop := start(t, w, func(context.Context) error { return nil })
	stop()
}
