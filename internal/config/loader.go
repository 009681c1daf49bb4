package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (CXXSCOPE_*)
// 2. Config file (.cxxscope/config.yml or .cxxscope/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(l.rootDir, ".cxxscope"))

	v.SetEnvPrefix("CXXSCOPE")
	v.AutomaticEnv()
	// CXXSCOPE_CASTXML_PATH -> castxml.path
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// castxml
	v.BindEnv("castxml.path")
	v.BindEnv("castxml.compiler")
	v.BindEnv("castxml.compiler_path")
	v.BindEnv("castxml.std")
	v.BindEnv("castxml.timeout_sec")

	// cache
	v.BindEnv("cache.enabled")
	v.BindEnv("cache.location")
	v.BindEnv("cache.max_age_days")

	v.BindEnv("comments.source")
	v.BindEnv("log.level")
	v.BindEnv("log.color")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("castxml.path", defaults.CastXML.Path)
	v.SetDefault("castxml.compiler", defaults.CastXML.Compiler)
	v.SetDefault("castxml.compiler_path", defaults.CastXML.CompilerPath)
	v.SetDefault("castxml.std", defaults.CastXML.Std)
	v.SetDefault("castxml.include_paths", defaults.CastXML.IncludePaths)
	v.SetDefault("castxml.defines", defaults.CastXML.Defines)
	v.SetDefault("castxml.cflags", defaults.CastXML.CFlags)
	v.SetDefault("castxml.timeout_sec", defaults.CastXML.TimeoutSec)

	v.SetDefault("paths.headers", defaults.Paths.Headers)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("cache.location", defaults.Cache.Location)
	v.SetDefault("cache.max_age_days", defaults.Cache.MaxAgeDays)

	v.SetDefault("comments.source", defaults.Comments.Source)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.color", defaults.Log.Color)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
