package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with args and returns its stdout. Flag
// values left over from earlier runs are reset first, since commands and their
// flags are package globals.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	rootDir = ""
	cfg = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// newProject creates a project root whose configuration keeps the dump cache
// inside the test's temp directory.
func newProject(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	cacheDir := filepath.Join(t.TempDir(), "cache")
	config := "cache:\n  location: " + cacheDir + "\nlog:\n  color: false\n"

	require.NoError(t, os.MkdirAll(filepath.Join(root, ".cxxscope"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".cxxscope", "config.yml"), []byte(config), 0644))
	return root
}

// fixture returns the absolute path of a castxml dump under testdata.
func fixture(t *testing.T, name string) string {
	t.Helper()
	abs, err := filepath.Abs(filepath.Join("..", "..", "testdata", "castxml", name))
	require.NoError(t, err)
	return abs
}
