package session

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/cxxscope/internal/config"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// HeaderDiscovery finds headers under a root directory with glob patterns and
// ignore rules.
type HeaderDiscovery struct {
	rootDir        string
	headerPatterns []compiledPattern
	ignorePatterns []compiledPattern
}

// NewHeaderDiscovery creates a new header discovery instance.
func NewHeaderDiscovery(rootDir string, headerPatterns, ignorePatterns []string) (*HeaderDiscovery, error) {
	hd := &HeaderDiscovery{rootDir: rootDir}

	var err error
	if hd.headerPatterns, err = compilePatterns(headerPatterns); err != nil {
		return nil, err
	}
	if hd.ignorePatterns, err = compilePatterns(ignorePatterns); err != nil {
		return nil, err
	}
	return hd, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := config.CompilePattern(pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, compiledPattern{pattern: pattern, glob: g})
	}
	return out, nil
}

// Discover walks the directory tree and returns matching headers, sorted.
func (hd *HeaderDiscovery) Discover() ([]string, error) {
	headers := []string{}

	err := filepath.WalkDir(hd.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(hd.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if hd.IgnoresDir(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if hd.Matches(relPath) {
			headers = append(headers, path)
		}
		return nil
	})

	sort.Strings(headers)
	return headers, err
}

// Matches reports whether relPath, relative to the root and slash-separated, is a
// header that is not ignored.
func (hd *HeaderDiscovery) Matches(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	return !hd.shouldIgnore(relPath) && matchesAnyPattern(relPath, hd.headerPatterns)
}

// IgnoresDir reports whether the directory relPath is skipped by discovery.
func (hd *HeaderDiscovery) IgnoresDir(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	return relPath != "." && hd.shouldIgnore(relPath)
}

// RootDir returns the directory discovery starts from.
func (hd *HeaderDiscovery) RootDir() string {
	return hd.rootDir
}

// shouldIgnore checks if a path matches any ignore pattern.
func (hd *HeaderDiscovery) shouldIgnore(relPath string) bool {
	// Always ignore .cxxscope directory
	if strings.HasPrefix(relPath, ".cxxscope/") || relPath == ".cxxscope" {
		return true
	}

	if matchesAnyPattern(relPath, hd.ignorePatterns) {
		return true
	}

	// Also check if this is a directory that would match with /** suffix
	// For example, "build" should match pattern "build/**"
	return matchesAnyPattern(relPath+"/**", hd.ignorePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// A root-level path (no slash) also matches patterns with the **/ prefix
	// removed, so "**/*.hpp" matches both "a.hpp" and "include/a.hpp".
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if simplified, ok := strings.CutPrefix(cp.pattern, "**/"); ok {
				if g, err := config.CompilePattern(simplified); err == nil && g.Match(path) {
					return true
				}
			}
		}
	}

	return false
}
