package config

// Config represents the complete cxxscope configuration.
// It can be loaded from .cxxscope/config.yml with environment variable overrides.
type Config struct {
	CastXML  CastXMLConfig  `yaml:"castxml" mapstructure:"castxml"`
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Comments CommentsConfig `yaml:"comments" mapstructure:"comments"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// CastXMLConfig configures how castxml is invoked on headers.
type CastXMLConfig struct {
	Path         string   `yaml:"path" mapstructure:"path"`                   // castxml binary
	Compiler     string   `yaml:"compiler" mapstructure:"compiler"`           // "gnu", "gnu-c" or "msvc"
	CompilerPath string   `yaml:"compiler_path" mapstructure:"compiler_path"` // compiler castxml emulates, e.g. /usr/bin/g++
	Std          string   `yaml:"std" mapstructure:"std"`                     // e.g. "c++17"
	IncludePaths []string `yaml:"include_paths" mapstructure:"include_paths"`
	Defines      []string `yaml:"defines" mapstructure:"defines"`
	CFlags       []string `yaml:"cflags" mapstructure:"cflags"`
	TimeoutSec   int      `yaml:"timeout_sec" mapstructure:"timeout_sec"` // per header
}

// PathsConfig defines which headers are parsed and which are ignored.
type PathsConfig struct {
	Headers []string `yaml:"headers" mapstructure:"headers"` // glob patterns for headers
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

// CacheConfig defines the dump cache behavior.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	Location   string `yaml:"location" mapstructure:"location"`         // Override default ~/.cxxscope/cache
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"` // Prune entries older than this (0 keeps all)
}

// CommentsConfig selects where comments come from.
type CommentsConfig struct {
	Source string `yaml:"source" mapstructure:"source"` // "scan", "castxml" or "none"
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // debug, info, warn, error
	Color bool   `yaml:"color" mapstructure:"color"`
}

// Comment sources.
const (
	CommentsScan    = "scan"
	CommentsCastXML = "castxml"
	CommentsNone    = "none"
)

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		CastXML: CastXMLConfig{
			Path:         "castxml",
			Compiler:     "gnu",
			Std:          "c++17",
			IncludePaths: []string{},
			Defines:      []string{},
			CFlags:       []string{},
			TimeoutSec:   120,
		},
		Paths: PathsConfig{
			Headers: []string{
				"**/*.h",
				"**/*.hh",
				"**/*.hpp",
				"**/*.hxx",
			},
			Ignore: []string{
				"build/**",
				"third_party/**",
				".git/**",
				".cxxscope/**",
			},
		},
		Cache: CacheConfig{
			Enabled:    true,
			Location:   "", // Empty = use default ~/.cxxscope/cache
			MaxAgeDays: 30,
		},
		Comments: CommentsConfig{
			Source: CommentsScan,
		},
		Log: LogConfig{
			Level: "info",
			Color: true,
		},
	}
}
