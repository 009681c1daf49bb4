// Package session loads C++ headers or CastXML dumps into a queryable declaration
// tree. A session discovers headers, runs castxml through the dump cache, merges
// translation units, builds the tree and attaches comments. It can be reloaded in
// place while readers keep using the previous tree.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/mvp-joe/cxxscope/internal/cache"
	"github.com/mvp-joe/cxxscope/internal/castxml"
	"github.com/mvp-joe/cxxscope/internal/comments"
	"github.com/mvp-joe/cxxscope/internal/config"
	"github.com/mvp-joe/cxxscope/internal/decls"
	"github.com/mvp-joe/cxxscope/internal/query"
)

// ErrNoInputs indicates nothing was given or discovered to load.
var ErrNoInputs = errors.New("no headers or dumps to load")

// Stats summarizes one load.
type Stats struct {
	Inputs       int
	Generated    int // castxml runs
	CacheHits    int
	Declarations int
	Comments     int // comment groups after merging
	Attached     int
	Duration     time.Duration
}

// Options configure a Session.
type Options struct {
	Config    *config.Config
	RootDir   string             // base for discovery and relative inputs
	Cache     *cache.Cache       // nil disables the dump cache
	Generator *castxml.Generator // defaults to one built from Config.CastXML
	Progress  ProgressReporter
	Logger    *slog.Logger
}

// Session owns the current declaration tree.
type Session struct {
	id        string
	opts      Options
	generator *castxml.Generator
	matcher   *query.Matcher
	logger    *slog.Logger

	mu         sync.RWMutex
	root       *decls.Declaration
	inputs     []string
	discovered bool
	stats      Stats
	loadedAt   time.Time

	versionOnce sync.Once
	version     string
}

// SettingsFrom converts the castxml configuration section into generator settings.
func SettingsFrom(c config.CastXMLConfig) castxml.Settings {
	return castxml.Settings{
		Path:         c.Path,
		Compiler:     c.Compiler,
		CompilerPath: c.CompilerPath,
		Std:          c.Std,
		IncludePaths: c.IncludePaths,
		Defines:      c.Defines,
		CFlags:       c.CFlags,
	}
}

// New creates an empty session.
func New(opts Options) (*Session, error) {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.RootDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		opts.RootDir = wd
	}
	if opts.Progress == nil {
		opts.Progress = NoOpProgressReporter{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	gen := opts.Generator
	if gen == nil {
		gen = castxml.NewGenerator(SettingsFrom(opts.Config.CastXML))
	}

	matcher, err := query.NewMatcher(query.WithMatcherLogger(opts.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create matcher: %w", err)
	}

	id := uuid.NewString()
	return &Session{
		id:        id,
		opts:      opts,
		generator: gen,
		matcher:   matcher,
		logger:    opts.Logger.With("session", id[:8]),
	}, nil
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// RootDir returns the directory inputs are resolved against.
func (s *Session) RootDir() string { return s.opts.RootDir }

// Root returns the current tree, or nil before the first successful load.
func (s *Session) Root() *decls.Declaration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Inputs returns the inputs of the current tree.
func (s *Session) Inputs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.inputs...)
}

// Stats returns the statistics of the last successful load.
func (s *Session) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// LoadedAt returns when the current tree was built.
func (s *Session) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Matcher returns the session's query matcher.
func (s *Session) Matcher() *query.Matcher { return s.matcher }

// Find runs c against the current tree.
func (s *Session) Find(c *query.Criteria) ([]*decls.Declaration, error) {
	root := s.Root()
	if root == nil {
		return nil, ErrNoInputs
	}
	return s.matcher.Find(c, root)
}

// GetSingle runs c against the current tree and requires exactly one match.
func (s *Session) GetSingle(c *query.Criteria) (*decls.Declaration, error) {
	root := s.Root()
	if root == nil {
		return nil, ErrNoInputs
	}
	return s.matcher.GetSingle(c, root)
}

// Load reads inputs and replaces the current tree. Inputs ending in ".xml" are
// read as CastXML dumps; anything else is a header run through castxml. With no
// inputs, headers are discovered under RootDir with the configured patterns.
//
// On error the current tree is kept.
func (s *Session) Load(ctx context.Context, inputs []string) error {
	start := time.Now()

	discovered := len(inputs) == 0
	if discovered {
		headers, err := s.discover()
		if err != nil {
			return err
		}
		inputs = headers
	}
	if len(inputs) == 0 {
		return ErrNoInputs
	}

	resolved := make([]string, len(inputs))
	for i, in := range inputs {
		if filepath.IsAbs(in) {
			resolved[i] = in
		} else {
			resolved[i] = filepath.Join(s.opts.RootDir, in)
		}
	}

	stats := Stats{Inputs: len(resolved)}
	s.opts.Progress.OnParseStart(len(resolved))

	var errs *multierror.Error
	dumps := make([]*castxml.Dump, 0, len(resolved))
	for _, in := range resolved {
		if err := ctx.Err(); err != nil {
			return err
		}
		dump, cached, err := s.read(ctx, in)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		switch {
		case cached:
			stats.CacheHits++
		case !isDump(in):
			stats.Generated++
		}
		dumps = append(dumps, dump)
		s.opts.Progress.OnInputParsed(in, cached)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("failed to load inputs: %w", err)
	}

	records, commentRecords := Merge(dumps...)
	root, err := decls.Build(records, decls.WithLogger(s.logger))
	if err != nil {
		return err
	}

	if s.opts.Config.Comments.Source == config.CommentsScan {
		commentRecords = scanComments(root, s.logger)
	}
	if s.opts.Config.Comments.Source != config.CommentsNone {
		res := comments.Associate(root, commentRecords, comments.WithLogger(s.logger))
		stats.Comments = res.Groups
		stats.Attached = res.Attached
	}

	root.Walk(func(*decls.Declaration) bool {
		stats.Declarations++
		return true
	})
	stats.Duration = time.Since(start)

	s.mu.Lock()
	s.root = root
	s.inputs = inputs
	s.discovered = discovered
	s.stats = stats
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("session loaded",
		"inputs", stats.Inputs,
		"generated", stats.Generated,
		"cache_hits", stats.CacheHits,
		"declarations", stats.Declarations,
		"comments_attached", stats.Attached,
		"duration", stats.Duration)
	s.opts.Progress.OnComplete(stats)
	return nil
}

// Reload repeats the last load. A session whose inputs were discovered
// discovers again, picking up added and removed headers.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.RLock()
	inputs := append([]string(nil), s.inputs...)
	discovered := s.discovered
	s.mu.RUnlock()

	if discovered {
		return s.Load(ctx, nil)
	}
	if len(inputs) == 0 {
		return ErrNoInputs
	}
	return s.Load(ctx, inputs)
}

// Discovered reports whether the current inputs came from header discovery.
func (s *Session) Discovered() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.discovered
}

// Close releases the matcher cache.
func (s *Session) Close() {
	s.matcher.Close()
}

// Discovery returns the header discovery built from the configured patterns.
func (s *Session) Discovery() (*HeaderDiscovery, error) {
	hd, err := NewHeaderDiscovery(s.opts.RootDir, s.opts.Config.Paths.Headers, s.opts.Config.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("invalid header patterns: %w", err)
	}
	return hd, nil
}

func (s *Session) discover() ([]string, error) {
	hd, err := s.Discovery()
	if err != nil {
		return nil, err
	}
	headers, err := hd.Discover()
	if err != nil {
		return nil, fmt.Errorf("failed to discover headers: %w", err)
	}
	s.opts.Progress.OnDiscoveryComplete(len(headers))
	return headers, nil
}

func (s *Session) readOptions() []castxml.ReadOption {
	opts := []castxml.ReadOption{castxml.WithLogger(s.logger)}
	if s.opts.Config.Comments.Source != config.CommentsCastXML {
		opts = append(opts, castxml.WithSource(nil))
	}
	return opts
}

// read loads one input, reporting whether the dump came from the cache.
func (s *Session) read(ctx context.Context, path string) (*castxml.Dump, bool, error) {
	if isDump(path) {
		dump, err := castxml.ReadFile(path, s.readOptions()...)
		return dump, false, err
	}

	key, err := cache.KeyForFile(path, s.generator.Settings().Signature())
	if err != nil {
		return nil, false, err
	}

	if s.opts.Cache != nil {
		entry, err := s.opts.Cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("dump cache read failed", "header", path, "error", err)
		} else if entry != nil {
			dump, err := castxml.Read(bytes.NewReader(entry.XML), s.readOptions()...)
			if err == nil {
				return dump, true, nil
			}
			s.logger.Warn("cached dump unreadable, regenerating", "header", path, "error", err)
		}
	}

	xml, err := s.generate(ctx, path)
	if err != nil {
		return nil, false, err
	}
	dump, err := castxml.Read(bytes.NewReader(xml), s.readOptions()...)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", path, err)
	}

	if s.opts.Cache != nil {
		if _, err := s.opts.Cache.Put(ctx, key, s.castxmlVersion(ctx), xml); err != nil {
			s.logger.Warn("dump cache write failed", "header", path, "error", err)
		}
	}
	return dump, false, nil
}

func (s *Session) generate(ctx context.Context, header string) ([]byte, error) {
	tmp, err := os.CreateTemp("", "cxxscope-*.xml")
	if err != nil {
		return nil, fmt.Errorf("failed to create dump file: %w", err)
	}
	out := tmp.Name()
	tmp.Close()
	defer os.Remove(out)

	if secs := s.opts.Config.CastXML.TimeoutSec; secs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(secs)*time.Second)
		defer cancel()
	}

	s.logger.Debug("running castxml", "header", header)
	if err := s.generator.Generate(ctx, header, out); err != nil {
		return nil, err
	}
	xml, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("failed to read dump for %s: %w", header, err)
	}
	return xml, nil
}

func (s *Session) castxmlVersion(ctx context.Context) string {
	s.versionOnce.Do(func() {
		v, err := s.generator.Version(ctx)
		if err != nil {
			s.logger.Debug("castxml version unavailable", "error", err)
			return
		}
		s.version = v
	})
	return s.version
}

func isDump(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xml")
}

// scanComments scans every source file that holds a located declaration.
// Unreadable files are skipped.
func scanComments(root *decls.Declaration, logger *slog.Logger) []comments.Record {
	files := make(map[string]bool)
	root.Walk(func(d *decls.Declaration) bool {
		if d.Location != nil && d.Location.File != "" && d.Location.File != castxml.BuiltinFile {
			files[d.Location.File] = true
		}
		return true
	})

	names := make([]string, 0, len(files))
	for f := range files {
		names = append(names, f)
	}
	sort.Strings(names)

	var out []comments.Record
	for _, f := range names {
		src, err := os.ReadFile(f)
		if err != nil {
			logger.Debug("comment source unavailable", "file", f, "error", err)
			continue
		}
		recs, err := comments.Scan(f, src)
		if err != nil {
			logger.Warn("comment scan failed", "file", f, "error", err)
			continue
		}
		out = append(out, recs...)
	}
	return out
}
