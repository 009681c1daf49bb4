package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for CompilePattern:
// - Well-formed patterns compile and match slash-separated paths
// - Unbalanced braces fail with ErrInvalidPattern even though the glob compiles
// - Escaped braces and braces inside character classes are literal
// - Patterns the glob compiler rejects fail with ErrInvalidPattern

func TestCompilePattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		match   string
		noMatch string
	}{
		{"**/*.hpp", "include/a.hpp", "include/a.cpp"},
		{"include/*.{h,hpp}", "include/a.h", "include/sub/a.h"},
		{`docs/\{draft\}.h`, "docs/{draft}.h", "docs/draft.h"},
		{"gen/[{]*.h", "gen/{x.h", "gen/x.h"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			t.Parallel()
			g, err := CompilePattern(tt.pattern)
			require.NoError(t, err)
			assert.True(t, g.Match(tt.match))
			assert.False(t, g.Match(tt.noMatch))
		})
	}
}

func TestCompilePattern_Invalid(t *testing.T) {
	t.Parallel()

	for _, pattern := range []string{"{a,b", "src/{x,{y,z}.h", "a,b}", "include/[.hpp"} {
		t.Run(pattern, func(t *testing.T) {
			t.Parallel()
			_, err := CompilePattern(pattern)
			assert.ErrorIs(t, err, ErrInvalidPattern)
		})
	}
}
