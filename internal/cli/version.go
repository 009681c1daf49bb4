package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxxscope/internal/castxml"
	"github.com/mvp-joe/cxxscope/internal/session"
)

var (
	// Version information - typically set via ldflags at build time
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of cxxscope and castxml",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "cxxscope %s\n", Version)
		fmt.Fprintf(out, "Git commit: %s\n", GitCommit)
		fmt.Fprintf(out, "Build date: %s\n", BuildDate)

		gen := castxml.NewGenerator(session.SettingsFrom(cfg.CastXML))
		v, err := gen.Version(cmd.Context())
		if err != nil {
			v = "unavailable (" + err.Error() + ")"
		}
		fmt.Fprintf(out, "castxml: %s\n", v)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
