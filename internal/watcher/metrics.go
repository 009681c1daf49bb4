package watcher

import (
	"sync"
	"time"
)

// ReloadMetrics tracks reload outcomes. All methods are safe for concurrent use.
type ReloadMetrics struct {
	lastReloadTime      time.Time
	lastReloadDuration  time.Duration
	lastReloadError     string
	totalReloads        int64
	successfulReloads   int64
	failedReloads       int64
	currentDeclarations int
	mu                  sync.RWMutex
}

// MetricsSnapshot is an immutable copy of the metrics at a point in time.
type MetricsSnapshot struct {
	LastReloadTime      time.Time     `json:"last_reload_time"`
	LastReloadDuration  time.Duration `json:"last_reload_duration_ns"`
	LastReloadError     string        `json:"last_reload_error,omitempty"`
	TotalReloads        int64         `json:"total_reloads"`
	SuccessfulReloads   int64         `json:"successful_reloads"`
	FailedReloads       int64         `json:"failed_reloads"`
	CurrentDeclarations int           `json:"current_declarations"`
}

// NewReloadMetrics creates zeroed metrics.
func NewReloadMetrics() *ReloadMetrics {
	return &ReloadMetrics{}
}

// RecordReload records one reload. A failed reload keeps the previous
// declaration count, matching the state that stays in service.
func (m *ReloadMetrics) RecordReload(duration time.Duration, err error, declarations int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastReloadTime = time.Now()
	m.lastReloadDuration = duration
	m.totalReloads++

	if err != nil {
		m.failedReloads++
		m.lastReloadError = err.Error()
		return
	}
	m.successfulReloads++
	m.lastReloadError = ""
	m.currentDeclarations = declarations
}

// Snapshot returns the current metrics.
func (m *ReloadMetrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSnapshot{
		LastReloadTime:      m.lastReloadTime,
		LastReloadDuration:  m.lastReloadDuration,
		LastReloadError:     m.lastReloadError,
		TotalReloads:        m.totalReloads,
		SuccessfulReloads:   m.successfulReloads,
		FailedReloads:       m.failedReloads,
		CurrentDeclarations: m.currentDeclarations,
	}
}
