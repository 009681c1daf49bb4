package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxxscope/internal/config"
	"github.com/mvp-joe/cxxscope/internal/logging"
)

var (
	rootDir  string
	inputs   []string
	logLevel string
	noColor  bool
	quiet    bool

	// cfg is loaded by the root command before any subcommand runs.
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cxxscope",
	Short: "Query C++ declarations extracted by castxml",
	Long: `cxxscope reads C++ headers through castxml, or castxml XML dumps directly,
and builds a declaration tree that can be searched by kind, name and type,
explored as a dependency graph, and served to coding assistants over MCP.

Inputs are given with -i/--input. Files ending in .xml are read as castxml
dumps; anything else is run through castxml. Without inputs, headers are
discovered under --root using the patterns in .cxxscope/config.yml.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupCommand,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "project root for discovery and relative inputs (default is the working directory)")
	rootCmd.PersistentFlags().StringSliceVarP(&inputs, "input", "i", nil, "header or castxml dump to load (repeatable)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored log output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
}

// setupCommand resolves the root, loads configuration and installs the logger.
func setupCommand(cmd *cobra.Command, args []string) error {
	if rootDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		rootDir = wd
	}
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return fmt.Errorf("failed to resolve root: %w", err)
	}
	rootDir = abs

	loaded, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg = loaded

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	ctx, err := logging.Setup(cmd.Context(), cmd.ErrOrStderr(), level, cfg.Log.Color && !noColor)
	if err != nil {
		return err
	}
	cmd.SetContext(ctx)
	return nil
}
