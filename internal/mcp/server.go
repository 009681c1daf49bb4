// Package mcp serves a loaded declaration tree to coding assistants over the
// Model Context Protocol on stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/cxxscope/internal/graph"
	"github.com/mvp-joe/cxxscope/internal/session"
	"github.com/mvp-joe/cxxscope/internal/watcher"
)

// Config configures the MCP server.
type Config struct {
	Version  string
	Watch    bool          // reload when headers change
	Debounce time.Duration // zero uses the watcher default
	Logger   *slog.Logger
}

// Server manages the MCP server lifecycle.
type Server struct {
	session     *session.Session
	searcher    graph.Searcher
	coordinator *watcher.Coordinator
	files       watcher.FileWatcher
	mcp         *server.MCPServer
	logger      *slog.Logger
}

// NewServer creates an MCP server over a loaded session. The graph is rebuilt
// from the session's tree whenever the session reloads.
func NewServer(sess *session.Session, cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	source := graph.SourceFunc(func() (*graph.GraphData, error) {
		return graph.Build(sess.Root()), nil
	})
	searcher, err := graph.NewSearcher(source, sess.RootDir(), graph.WithLogger(cfg.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create graph searcher: %w", err)
	}

	s := &Server{
		session:  sess,
		searcher: searcher,
		logger:   cfg.Logger,
	}

	if cfg.Watch {
		if err := s.setupWatcher(cfg); err != nil {
			searcher.Close()
			return nil, err
		}
	}

	s.mcp = server.NewMCPServer(
		"cxxscope",
		cfg.Version,
		server.WithToolCapabilities(true),
	)
	AddFindTool(s.mcp, sess)
	AddDeclarationTool(s.mcp, sess)
	AddGraphTool(s.mcp, searcher)

	var metrics *watcher.ReloadMetrics
	if s.coordinator != nil {
		metrics = s.coordinator.Metrics()
	}
	AddStatusTool(s.mcp, sess, metrics)

	return s, nil
}

func (s *Server) setupWatcher(cfg Config) error {
	discovery, err := s.session.Discovery()
	if err != nil {
		return err
	}

	var filter watcher.PathFilter = discovery
	if !s.session.Discovered() {
		filter = newInputFilter(s.session.RootDir(), s.session.Inputs(), discovery)
	}

	opts := []watcher.Option{watcher.WithLogger(cfg.Logger)}
	if cfg.Debounce > 0 {
		opts = append(opts, watcher.WithDebounce(cfg.Debounce))
	}
	files, err := watcher.NewFileWatcher(s.session.RootDir(), filter, opts...)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	s.files = files
	s.coordinator = watcher.NewCoordinator(files,
		[]watcher.Reloader{s.session, s.searcher},
		watcher.WithCoordinatorLogger(cfg.Logger),
		watcher.WithDeclarationCount(func() int { return s.session.Stats().Declarations }),
	)
	return nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.coordinator != nil {
		go func() {
			if err := s.coordinator.Start(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("header watcher stopped", "error", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server on stdio", "inputs", len(s.session.Inputs()), "watch", s.coordinator != nil)
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-sigCh:
		s.logger.Info("received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops watching and releases the graph searcher. The session is owned by
// the caller.
func (s *Server) Close() error {
	if s.files != nil {
		if err := s.files.Stop(); err != nil {
			s.logger.Warn("file watcher stop failed", "error", err)
		}
	}
	return s.searcher.Close()
}

// inputFilter matches an explicit list of inputs, for sessions that were not
// loaded through discovery.
type inputFilter struct {
	inputs map[string]bool
	dirs   watcher.PathFilter
}

func newInputFilter(root string, inputs []string, dirs watcher.PathFilter) *inputFilter {
	f := &inputFilter{inputs: make(map[string]bool, len(inputs)), dirs: dirs}
	for _, in := range inputs {
		if !filepath.IsAbs(in) {
			in = filepath.Join(root, in)
		}
		if rel, err := filepath.Rel(root, in); err == nil {
			f.inputs[filepath.ToSlash(rel)] = true
		}
	}
	return f
}

func (f *inputFilter) Matches(relPath string) bool { return f.inputs[relPath] }

func (f *inputFilter) IgnoresDir(relPath string) bool { return f.dirs.IgnoresDir(relPath) }
