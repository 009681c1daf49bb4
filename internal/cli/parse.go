package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxxscope/internal/decls"
)

var (
	parseTree     bool
	parseMaxDepth int
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Load inputs and report what was found",
	Long: `Load the inputs (or discovered headers), build the declaration tree and
attach comments, then print load statistics.

With --tree the declaration tree is printed, one declaration per line.

Examples:
  cxxscope parse -i include/widget.hpp
  cxxscope parse -i build/widget.xml --tree --max-depth 2`,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&parseTree, "tree", false, "print the declaration tree")
	parseCmd.Flags().IntVar(&parseMaxDepth, "max-depth", 0, "limit --tree to this depth (0 prints everything)")
}

func runParse(cmd *cobra.Command, args []string) error {
	sess, cleanup, err := loadSession(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	out := cmd.OutOrStdout()
	stats := sess.Stats()
	fmt.Fprintf(out, "Inputs:            %s\n", formatNumber(stats.Inputs))
	fmt.Fprintf(out, "castxml runs:      %s\n", formatNumber(stats.Generated))
	fmt.Fprintf(out, "Cache hits:        %s\n", formatNumber(stats.CacheHits))
	fmt.Fprintf(out, "Declarations:      %s\n", formatNumber(stats.Declarations))
	fmt.Fprintf(out, "Comments attached: %s of %s\n", formatNumber(stats.Attached), formatNumber(stats.Comments))

	if parseTree {
		fmt.Fprintln(out)
		printTree(out, sess.Root(), parseMaxDepth)
	}
	return nil
}

// printTree prints the children of root indented by depth.
func printTree(w io.Writer, root *decls.Declaration, maxDepth int) {
	var visit func(d *decls.Declaration, depth int)
	visit = func(d *decls.Declaration, depth int) {
		for _, c := range d.Children() {
			fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), c.String())
			if maxDepth == 0 || depth+1 < maxDepth {
				visit(c, depth+1)
			}
		}
	}
	visit(root, 0)
}
