package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrEmptyCastXMLPath indicates the castxml binary is not configured
	ErrEmptyCastXMLPath = errors.New("empty castxml path")

	// ErrInvalidCompiler indicates an unsupported compiler family
	ErrInvalidCompiler = errors.New("invalid compiler")

	// ErrInvalidTimeout indicates a negative castxml timeout
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrEmptyHeaders indicates no header patterns are configured
	ErrEmptyHeaders = errors.New("empty header patterns")

	// ErrInvalidPattern indicates a glob that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrInvalidCacheSettings indicates invalid cache configuration
	ErrInvalidCacheSettings = errors.New("invalid cache settings")

	// ErrInvalidCommentSource indicates an unknown comment source
	ErrInvalidCommentSource = errors.New("invalid comment source")

	// ErrInvalidLogLevel indicates an unknown log level
	ErrInvalidLogLevel = errors.New("invalid log level")
)

var (
	compilers = []string{"gnu", "gnu-c", "msvc", "msvc-c"}
	sources   = []string{CommentsScan, CommentsCastXML, CommentsNone}
	logLevels = []string{"debug", "info", "warn", "error"}
)

// Validate checks that the configuration is valid and complete.
// Every problem is reported, not only the first.
func Validate(cfg *Config) error {
	var result *multierror.Error

	result = multierror.Append(result, validateCastXML(&cfg.CastXML)...)
	result = multierror.Append(result, validatePaths(&cfg.Paths)...)
	result = multierror.Append(result, validateCache(&cfg.Cache)...)

	if !oneOf(cfg.Comments.Source, sources) {
		result = multierror.Append(result, fmt.Errorf("%w: must be one of %s, got '%s'",
			ErrInvalidCommentSource, strings.Join(sources, ", "), cfg.Comments.Source))
	}
	if !oneOf(strings.ToLower(cfg.Log.Level), logLevels) {
		result = multierror.Append(result, fmt.Errorf("%w: must be one of %s, got '%s'",
			ErrInvalidLogLevel, strings.Join(logLevels, ", "), cfg.Log.Level))
	}

	return result.ErrorOrNil()
}

func validateCastXML(cfg *CastXMLConfig) []error {
	var errs []error

	if strings.TrimSpace(cfg.Path) == "" {
		errs = append(errs, ErrEmptyCastXMLPath)
	}
	if !oneOf(cfg.Compiler, compilers) {
		errs = append(errs, fmt.Errorf("%w: must be one of %s, got '%s'",
			ErrInvalidCompiler, strings.Join(compilers, ", "), cfg.Compiler))
	}
	if cfg.TimeoutSec < 0 {
		errs = append(errs, fmt.Errorf("%w: timeout_sec must be >= 0, got %d", ErrInvalidTimeout, cfg.TimeoutSec))
	}

	return errs
}

func validatePaths(cfg *PathsConfig) []error {
	var errs []error

	if len(cfg.Headers) == 0 {
		errs = append(errs, ErrEmptyHeaders)
	}
	for _, p := range append(append([]string{}, cfg.Headers...), cfg.Ignore...) {
		if _, err := CompilePattern(p); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

func validateCache(cfg *CacheConfig) []error {
	if cfg.MaxAgeDays < 0 {
		return []error{fmt.Errorf("%w: max_age_days must be >= 0, got %d", ErrInvalidCacheSettings, cfg.MaxAgeDays)}
	}
	return nil
}

func oneOf(s string, allowed []string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}
