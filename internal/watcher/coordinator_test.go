package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Coordinator:
// - Start fails when the file watcher fails to start
// - A batch of changes reloads every target in order, paused for the duration
// - A failing target skips the rest and is recorded as a failed reload
// - An empty batch reloads nothing
// - Cancelling the context stops the file watcher and returns ctx.Err()

// mockFileWatcher records calls and lets tests fire change batches.
type mockFileWatcher struct {
	mu       sync.Mutex
	callback func([]string)
	startErr error
	started  chan struct{}
	calls    []string
}

func newMockFileWatcher() *mockFileWatcher {
	return &mockFileWatcher{started: make(chan struct{})}
}

func (m *mockFileWatcher) Start(_ context.Context, callback func([]string)) error {
	if m.startErr != nil {
		return m.startErr
	}
	m.mu.Lock()
	m.callback = callback
	m.mu.Unlock()
	close(m.started)
	return nil
}

func (m *mockFileWatcher) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockFileWatcher) Stop() error { m.record("stop"); return nil }
func (m *mockFileWatcher) Pause()      { m.record("pause") }
func (m *mockFileWatcher) Resume()     { m.record("resume") }

func (m *mockFileWatcher) fire(files []string) {
	m.mu.Lock()
	cb := m.callback
	m.mu.Unlock()
	cb(files)
}

func (m *mockFileWatcher) recorded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// mockReloader appends its name to a shared log.
type mockReloader struct {
	name string
	err  error
	log  *[]string
	mu   *sync.Mutex
}

func (r *mockReloader) Reload(context.Context) error {
	r.mu.Lock()
	*r.log = append(*r.log, r.name)
	r.mu.Unlock()
	return r.err
}

func runCoordinator(t *testing.T, c *Coordinator, fw *mockFileWatcher) (context.CancelFunc, chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	select {
	case <-fw.started:
	case <-time.After(time.Second):
		t.Fatal("file watcher not started")
	}
	t.Cleanup(cancel)
	return cancel, done
}

func TestCoordinator_StartError(t *testing.T) {
	t.Parallel()

	fw := newMockFileWatcher()
	fw.startErr = errors.New("no inotify")

	c := NewCoordinator(fw, nil)
	err := c.Start(context.Background())
	assert.EqualError(t, err, "no inotify")
	assert.Equal(t, []string{"stop"}, fw.recorded())
}

func TestCoordinator_ReloadsTargetsInOrder(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var log []string
	session := &mockReloader{name: "session", log: &log, mu: &mu}
	searcher := &mockReloader{name: "graph", log: &log, mu: &mu}

	fw := newMockFileWatcher()
	c := NewCoordinator(fw, []Reloader{session, searcher}, WithDeclarationCount(func() int { return 42 }))
	runCoordinator(t, c, fw)

	fw.fire([]string{"/src/a.hpp"})

	assert.Equal(t, []string{"session", "graph"}, log)
	assert.Equal(t, []string{"pause", "resume"}, fw.recorded())

	snap := c.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalReloads)
	assert.Equal(t, int64(1), snap.SuccessfulReloads)
	assert.Equal(t, 42, snap.CurrentDeclarations)
	assert.Empty(t, snap.LastReloadError)
}

func TestCoordinator_FailureSkipsRemainingTargets(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var log []string
	session := &mockReloader{name: "session", err: errors.New("castxml failed"), log: &log, mu: &mu}
	searcher := &mockReloader{name: "graph", log: &log, mu: &mu}

	fw := newMockFileWatcher()
	c := NewCoordinator(fw, []Reloader{session, searcher})
	runCoordinator(t, c, fw)

	fw.fire([]string{"/src/a.hpp"})

	assert.Equal(t, []string{"session"}, log)
	snap := c.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.FailedReloads)
	assert.Equal(t, "castxml failed", snap.LastReloadError)
	assert.Equal(t, []string{"pause", "resume"}, fw.recorded())
}

func TestCoordinator_EmptyBatch(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var log []string
	fw := newMockFileWatcher()
	c := NewCoordinator(fw, []Reloader{&mockReloader{name: "session", log: &log, mu: &mu}})
	runCoordinator(t, c, fw)

	fw.fire(nil)

	assert.Empty(t, log)
	assert.Zero(t, c.Metrics().Snapshot().TotalReloads)
}

func TestCoordinator_ContextCancellation(t *testing.T) {
	t.Parallel()

	fw := newMockFileWatcher()
	c := NewCoordinator(fw, nil)
	cancel, done := runCoordinator(t, c, fw)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("coordinator did not stop")
	}
	assert.Equal(t, []string{"stop"}, fw.recorded())
}
