package watcher

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Coordinator reloads its targets, in order, whenever the file watcher reports
// changed headers. File events arriving during a reload are held until it ends.
type Coordinator struct {
	files   FileWatcher
	targets []Reloader
	metrics *ReloadMetrics
	logger  *slog.Logger
	count   func() int

	mu  sync.Mutex
	ctx context.Context
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithCoordinatorLogger sets the logger for reload outcomes.
func WithCoordinatorLogger(l *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// WithDeclarationCount reports the declaration count recorded after each
// successful reload.
func WithDeclarationCount(fn func() int) CoordinatorOption {
	return func(c *Coordinator) {
		c.count = fn
	}
}

// NewCoordinator creates a coordinator. Targets reload in the given order and a
// failure skips the remaining ones, so a graph built from a session should come
// after it.
func NewCoordinator(files FileWatcher, targets []Reloader, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		files:   files,
		targets: targets,
		metrics: NewReloadMetrics(),
		logger:  slog.Default(),
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins watching. Blocks until ctx is cancelled, then stops the file watcher.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	if err := c.files.Start(ctx, c.handleFileChange); err != nil {
		c.cleanup()
		return err
	}

	<-ctx.Done()
	c.cleanup()
	return ctx.Err()
}

// Metrics returns the reload statistics.
func (c *Coordinator) Metrics() *ReloadMetrics {
	return c.metrics
}

func (c *Coordinator) cleanup() {
	if err := c.files.Stop(); err != nil {
		c.logger.Warn("file watcher stop failed", "error", err)
	}
}

// handleFileChange reloads every target once for a batch of changed files.
func (c *Coordinator) handleFileChange(files []string) {
	if len(files) == 0 {
		return
	}

	c.files.Pause()
	defer c.files.Resume()

	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()

	c.logger.Info("headers changed, reloading", "files", len(files))
	start := time.Now()

	var err error
	for _, target := range c.targets {
		if err = target.Reload(ctx); err != nil {
			break
		}
	}

	declarations := 0
	if err == nil && c.count != nil {
		declarations = c.count()
	}
	c.metrics.RecordReload(time.Since(start), err, declarations)

	if err != nil {
		c.logger.Error("reload failed, keeping previous state", "error", err)
		return
	}
	c.logger.Info("reloaded", "declarations", declarations, "duration", time.Since(start))
}
