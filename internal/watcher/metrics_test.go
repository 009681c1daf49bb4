package watcher

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Test Plan for ReloadMetrics:
// - Successful reloads update counts, duration and declaration count
// - A failure records the error and keeps the previous declaration count
// - A later success clears the error
// - Concurrent recording loses no updates

func TestReloadMetrics_Record(t *testing.T) {
	t.Parallel()

	m := NewReloadMetrics()
	assert.Zero(t, m.Snapshot().TotalReloads)

	m.RecordReload(20*time.Millisecond, nil, 10)
	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.SuccessfulReloads)
	assert.Equal(t, 20*time.Millisecond, snap.LastReloadDuration)
	assert.Equal(t, 10, snap.CurrentDeclarations)
	assert.False(t, snap.LastReloadTime.IsZero())

	m.RecordReload(5*time.Millisecond, errors.New("parse error"), 0)
	snap = m.Snapshot()
	assert.Equal(t, int64(2), snap.TotalReloads)
	assert.Equal(t, int64(1), snap.FailedReloads)
	assert.Equal(t, "parse error", snap.LastReloadError)
	assert.Equal(t, 10, snap.CurrentDeclarations)

	m.RecordReload(time.Millisecond, nil, 12)
	snap = m.Snapshot()
	assert.Empty(t, snap.LastReloadError)
	assert.Equal(t, 12, snap.CurrentDeclarations)
}

func TestReloadMetrics_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewReloadMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				err = errors.New("fail")
			}
			m.RecordReload(time.Millisecond, err, i)
			_ = m.Snapshot()
		}(i)
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.Equal(t, int64(50), snap.TotalReloads)
	assert.Equal(t, int64(25), snap.FailedReloads)
	assert.Equal(t, int64(25), snap.SuccessfulReloads)
}
