package castxml

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// ErrGenerate indicates castxml could not produce a dump.
var ErrGenerate = errors.New("castxml failed")

// Runner executes external commands.
// This allows mocking castxml in tests.
type Runner interface {
	// Run executes name with args and returns its standard output. A non-zero exit
	// status is an error that includes standard error.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner is the real implementation using exec.CommandContext.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return out, fmt.Errorf("%w: %s", err, msg)
		}
		return out, err
	}
	return out, nil
}

// Settings describe how castxml is invoked.
type Settings struct {
	Path         string   // castxml binary
	Compiler     string   // compiler family: gnu, gnu-c, msvc
	CompilerPath string   // compiler castxml emulates
	Std          string   // language standard, e.g. c++17
	IncludePaths []string // -I
	Defines      []string // -D
	CFlags       []string // passed through verbatim
}

// Signature returns a stable string identifying every setting that influences the
// dump, suitable as a cache key component.
func (s Settings) Signature() string {
	var b strings.Builder
	fmt.Fprintf(&b, "path=%s;cc=%s;ccpath=%s;std=%s", s.Path, s.Compiler, s.CompilerPath, s.Std)
	for _, p := range s.IncludePaths {
		b.WriteString(";I=" + p)
	}
	for _, d := range s.Defines {
		b.WriteString(";D=" + d)
	}
	for _, f := range s.CFlags {
		b.WriteString(";f=" + f)
	}
	return b.String()
}

// Generator runs castxml to produce XML dumps.
type Generator struct {
	settings Settings
	runner   Runner
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithRunner replaces the command runner.
func WithRunner(r Runner) GeneratorOption {
	return func(g *Generator) { g.runner = r }
}

// NewGenerator creates a Generator. An empty Path defaults to "castxml".
func NewGenerator(s Settings, opts ...GeneratorOption) *Generator {
	if s.Path == "" {
		s.Path = "castxml"
	}
	if s.Compiler == "" {
		s.Compiler = "gnu"
	}
	g := &Generator{settings: s, runner: execRunner{}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Settings returns the effective settings.
func (g *Generator) Settings() Settings {
	return g.settings
}

// Args returns the castxml arguments that dump header into out.
func (g *Generator) Args(header, out string) []string {
	s := g.settings
	args := []string{"--castxml-output=1"}
	if s.CompilerPath != "" {
		args = append(args, "--castxml-cc-"+s.Compiler, s.CompilerPath)
	}
	if s.Std != "" {
		args = append(args, "-std="+s.Std)
	}
	for _, p := range s.IncludePaths {
		args = append(args, "-I"+p)
	}
	for _, d := range s.Defines {
		args = append(args, "-D"+d)
	}
	args = append(args, s.CFlags...)
	return append(args, "-o", out, header)
}

// Generate dumps header into the file out.
func (g *Generator) Generate(ctx context.Context, header, out string) error {
	if _, err := g.runner.Run(ctx, g.settings.Path, g.Args(header, out)...); err != nil {
		return fmt.Errorf("%w on %s: %w", ErrGenerate, header, err)
	}
	return nil
}

var versionPattern = regexp.MustCompile(`castxml version (\d+\.\d+\.\d+)`)

// Version returns the castxml version string, such as "0.6.2".
func (g *Generator) Version(ctx context.Context) (string, error) {
	out, err := g.runner.Run(ctx, g.settings.Path, "--version")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerate, err)
	}
	m := versionPattern.FindSubmatch(out)
	if m == nil {
		return "", fmt.Errorf("%w: unrecognized version output %q", ErrGenerate, strings.TrimSpace(string(out)))
	}
	return string(m[1]), nil
}
