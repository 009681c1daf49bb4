package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxxscope/internal/cache"
	"github.com/mvp-joe/cxxscope/internal/logging"
	"github.com/mvp-joe/cxxscope/internal/session"
)

// openCache opens the dump cache, or returns nil when caching is disabled.
func openCache(logger *slog.Logger) (*cache.Cache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	c, err := cache.Open(cfg.Cache.Location, cache.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open dump cache: %w", err)
	}
	return c, nil
}

// loadSession builds a session from --input, or from discovery when no inputs
// are given. The returned cleanup closes the session and the cache.
func loadSession(cmd *cobra.Command) (*session.Session, func(), error) {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	dumps, err := openCache(logger)
	if err != nil {
		return nil, nil, err
	}

	sess, err := session.New(session.Options{
		Config:   cfg,
		RootDir:  rootDir,
		Cache:    dumps,
		Progress: NewCLIProgressReporter(cmd.ErrOrStderr(), quiet),
		Logger:   logger,
	})
	if err != nil {
		if dumps != nil {
			dumps.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		sess.Close()
		if dumps != nil {
			dumps.Close()
		}
	}

	if err := sess.Load(ctx, inputs); err != nil {
		cleanup()
		return nil, nil, err
	}
	return sess, cleanup, nil
}
