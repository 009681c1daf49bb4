package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - LoadConfig() uses defaults when no config file exists
// - LoadConfig() loads from .cxxscope/config.yml and .cxxscope/config.yaml
// - LoadConfig() merges config file with defaults
// - Environment variables override config file values and defaults
// - LoadConfig() returns error for malformed YAML
// - LoadConfig() returns error for invalid configuration values
// - Validate() rejects each invalid field with its sentinel error
// - Validate() returns multiple errors for multiple invalid fields

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "castxml", cfg.CastXML.Path)
	assert.Equal(t, "gnu", cfg.CastXML.Compiler)
	assert.Equal(t, "c++17", cfg.CastXML.Std)
	assert.Equal(t, 120, cfg.CastXML.TimeoutSec)
	assert.Contains(t, cfg.Paths.Headers, "**/*.hpp")
	assert.Contains(t, cfg.Paths.Ignore, "build/**")
	assert.True(t, cfg.Cache.Enabled)
	assert.Empty(t, cfg.Cache.Location)
	assert.Equal(t, CommentsScan, cfg.Comments.Source)
	assert.Equal(t, "info", cfg.Log.Level)

	require.NoError(t, Validate(cfg))
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	expected := Default()
	assert.Equal(t, expected.CastXML.Path, cfg.CastXML.Path)
	assert.Equal(t, expected.CastXML.Std, cfg.CastXML.Std)
	assert.Empty(t, cfg.CastXML.IncludePaths)
	assert.Equal(t, expected.Paths.Headers, cfg.Paths.Headers)
	assert.Equal(t, expected.Paths.Ignore, cfg.Paths.Ignore)
	assert.Equal(t, expected.Cache, cfg.Cache)
	assert.Equal(t, expected.Comments, cfg.Comments)
	assert.Equal(t, expected.Log, cfg.Log)
}

func TestLoadConfig_LoadsFromConfigFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
	}{
		{"yml", "config.yml"},
		{"yaml", "config.yaml"},
	}

	configContent := `
castxml:
  path: /opt/castxml/bin/castxml
  compiler: msvc
  compiler_path: cl.exe
  std: c++20
  include_paths:
    - include
    - /usr/local/include
  defines: ["NDEBUG"]
  cflags: ["-w"]

paths:
  headers:
    - "include/**/*.hpp"
  ignore:
    - "include/detail/**"

cache:
  enabled: false
  location: /tmp/cxxscope-cache

comments:
  source: castxml

log:
  level: debug
  color: false
`

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tempDir := t.TempDir()
			dir := filepath.Join(tempDir, ".cxxscope")
			require.NoError(t, os.MkdirAll(dir, 0755))
			require.NoError(t, os.WriteFile(filepath.Join(dir, tt.file), []byte(configContent), 0644))

			cfg, err := LoadConfigFromDir(tempDir)
			require.NoError(t, err)

			assert.Equal(t, "/opt/castxml/bin/castxml", cfg.CastXML.Path)
			assert.Equal(t, "msvc", cfg.CastXML.Compiler)
			assert.Equal(t, "cl.exe", cfg.CastXML.CompilerPath)
			assert.Equal(t, "c++20", cfg.CastXML.Std)
			assert.Equal(t, []string{"include", "/usr/local/include"}, cfg.CastXML.IncludePaths)
			assert.Equal(t, []string{"NDEBUG"}, cfg.CastXML.Defines)
			assert.Equal(t, []string{"-w"}, cfg.CastXML.CFlags)
			assert.Equal(t, []string{"include/**/*.hpp"}, cfg.Paths.Headers)
			assert.Equal(t, []string{"include/detail/**"}, cfg.Paths.Ignore)
			assert.False(t, cfg.Cache.Enabled)
			assert.Equal(t, "/tmp/cxxscope-cache", cfg.Cache.Location)
			assert.Equal(t, CommentsCastXML, cfg.Comments.Source)
			assert.Equal(t, "debug", cfg.Log.Level)
			assert.False(t, cfg.Log.Color)
		})
	}
}

func TestLoadConfig_MergesConfigWithDefaults(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	dir := filepath.Join(tempDir, ".cxxscope")
	require.NoError(t, os.MkdirAll(dir, 0755))

	configContent := `
castxml:
  std: c++14
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(configContent), 0644))

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "c++14", cfg.CastXML.Std)

	defaults := Default()
	assert.Equal(t, defaults.CastXML.Path, cfg.CastXML.Path)
	assert.Equal(t, defaults.Paths.Headers, cfg.Paths.Headers)
	assert.Equal(t, defaults.Cache.MaxAgeDays, cfg.Cache.MaxAgeDays)
	assert.Equal(t, defaults.Comments.Source, cfg.Comments.Source)
}

func TestLoadConfig_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()

	tempDir := t.TempDir()
	dir := filepath.Join(tempDir, ".cxxscope")
	require.NoError(t, os.MkdirAll(dir, 0755))

	configContent := `
castxml:
  path: /file/castxml
  std: c++11
cache:
  location: /file/cache
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(configContent), 0644))

	t.Setenv("CXXSCOPE_CASTXML_PATH", "/env/castxml")
	t.Setenv("CXXSCOPE_CACHE_ENABLED", "false")
	t.Setenv("CXXSCOPE_CACHE_MAX_AGE_DAYS", "7")
	t.Setenv("CXXSCOPE_COMMENTS_SOURCE", "none")
	t.Setenv("CXXSCOPE_LOG_LEVEL", "warn")

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	// Environment variables should win
	assert.Equal(t, "/env/castxml", cfg.CastXML.Path)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 7, cfg.Cache.MaxAgeDays)
	assert.Equal(t, CommentsNone, cfg.Comments.Source)
	assert.Equal(t, "warn", cfg.Log.Level)

	// Not overridden, should come from config file
	assert.Equal(t, "c++11", cfg.CastXML.Std)
	assert.Equal(t, "/file/cache", cfg.Cache.Location)
}

func TestLoadConfig_ReturnsErrorForMalformedYaml(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	dir := filepath.Join(tempDir, ".cxxscope")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("castxml:\n  path: [unclosed\n"), 0644))

	_, err := NewLoader(tempDir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_ReturnsErrorForInvalidValues(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	dir := filepath.Join(tempDir, ".cxxscope")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("comments:\n  source: doxygen\n"), 0644))

	_, err := NewLoader(tempDir).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCommentSource)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidate_RejectsInvalidFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"empty castxml path", func(c *Config) { c.CastXML.Path = " " }, ErrEmptyCastXMLPath},
		{"unknown compiler", func(c *Config) { c.CastXML.Compiler = "icc" }, ErrInvalidCompiler},
		{"negative timeout", func(c *Config) { c.CastXML.TimeoutSec = -1 }, ErrInvalidTimeout},
		{"no headers", func(c *Config) { c.Paths.Headers = nil }, ErrEmptyHeaders},
		{"bad header glob", func(c *Config) { c.Paths.Headers = []string{"include/[.hpp"} }, ErrInvalidPattern},
		{"bad ignore glob", func(c *Config) { c.Paths.Ignore = []string{"{a,b"} }, ErrInvalidPattern},
		{"negative max age", func(c *Config) { c.Cache.MaxAgeDays = -3 }, ErrInvalidCacheSettings},
		{"unknown comment source", func(c *Config) { c.Comments.Source = "doxygen" }, ErrInvalidCommentSource},
		{"unknown log level", func(c *Config) { c.Log.Level = "trace" }, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.modify(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_AcceptsUppercaseLogLevel(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Log.Level = "DEBUG"
	assert.NoError(t, Validate(cfg))
}

func TestValidate_ReturnsMultipleErrorsForMultipleInvalidFields(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.CastXML.Path = ""
	cfg.CastXML.Compiler = "icc"
	cfg.Paths.Headers = nil
	cfg.Log.Level = "loud"

	err := Validate(cfg)
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 4)
	assert.ErrorIs(t, err, ErrEmptyCastXMLPath)
	assert.ErrorIs(t, err, ErrInvalidCompiler)
	assert.ErrorIs(t, err, ErrEmptyHeaders)
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}
