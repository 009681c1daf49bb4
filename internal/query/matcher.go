package query

import (
	"fmt"
	"log/slog"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/cxxscope/internal/cpptypes"
	"github.com/mvp-joe/cxxscope/internal/decls"
)

// DefaultTypeCacheSize is the number of parsed spellings a Matcher keeps.
const DefaultTypeCacheSize = 4096

type parsedType struct {
	typ cpptypes.Type
	err error
}

// Matcher evaluates criteria like Find and GetSingle but memoizes type spellings,
// which pays off for long-lived callers issuing many string-typed queries. It is
// safe for concurrent use.
type Matcher struct {
	types  otter.Cache[string, parsedType]
	logger *slog.Logger
}

// MatcherOption configures a Matcher.
type MatcherOption func(*matcherOptions)

type matcherOptions struct {
	size   int
	logger *slog.Logger
}

// WithCacheSize sets the number of cached spellings.
func WithCacheSize(n int) MatcherOption {
	return func(o *matcherOptions) {
		if n > 0 {
			o.size = n
		}
	}
}

// WithMatcherLogger sets the matcher's logger.
func WithMatcherLogger(l *slog.Logger) MatcherOption {
	return func(o *matcherOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewMatcher creates a Matcher. Close releases its cache.
func NewMatcher(opts ...MatcherOption) (*Matcher, error) {
	o := matcherOptions{size: DefaultTypeCacheSize, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	cache, err := otter.MustBuilder[string, parsedType](o.size).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create type cache: %w", err)
	}
	return &Matcher{types: cache, logger: o.logger}, nil
}

// Find is Find with cached type parsing.
func (m *Matcher) Find(c *Criteria, root *decls.Declaration) ([]*decls.Declaration, error) {
	return find(c, root, m.parse)
}

// GetSingle is GetSingle with cached type parsing.
func (m *Matcher) GetSingle(c *Criteria, root *decls.Declaration) (*decls.Declaration, error) {
	return getSingle(c, root, m.parse)
}

// ParseType parses a spelling through the cache.
func (m *Matcher) ParseType(spelling string) (cpptypes.Type, error) {
	return m.parse(spelling)
}

func (m *Matcher) parse(spelling string) (cpptypes.Type, error) {
	if p, ok := m.types.Get(spelling); ok {
		return p.typ, p.err
	}
	t, err := cpptypes.FromName(spelling)
	m.types.Set(spelling, parsedType{typ: t, err: err})
	if err != nil {
		m.logger.Debug("type spelling rejected", "spelling", spelling, "error", err)
	}
	return t, err
}

// CacheStats reports hits and misses of the type cache.
func (m *Matcher) CacheStats() (hits, misses int64) {
	s := m.types.Stats()
	return s.Hits(), s.Misses()
}

// Close releases the matcher's cache.
func (m *Matcher) Close() {
	m.types.Close()
}
