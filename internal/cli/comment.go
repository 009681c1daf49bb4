package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxxscope/internal/decls"
)

var commentJSON bool

// commentCmd represents the comment command
var commentCmd = &cobra.Command{
	Use:   "comment <qualified-name>",
	Short: "Print the comment attached to a declaration",
	Long: `Print the documentation comment attached to the declaration with the given
qualified name, with its location.

Examples:
  cxxscope comment -i widget.hpp ns::Widget
  cxxscope comment -i widget.hpp ::ns::Widget::resize --json`,
	Args: cobra.ExactArgs(1),
	RunE: runComment,
}

func init() {
	rootCmd.AddCommand(commentCmd)
	commentCmd.Flags().BoolVar(&commentJSON, "json", false, "print the declaration summary as JSON")
}

func runComment(cmd *cobra.Command, args []string) error {
	sess, cleanup, err := loadSession(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	name := args[0]
	if !strings.HasPrefix(name, decls.GlobalName) {
		name = decls.GlobalName + name
	}
	d, err := sess.Root().Lookup(name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if commentJSON {
		return writeJSON(out, decls.Summarize(d))
	}

	c := d.Comment()
	if c == nil {
		fmt.Fprintf(out, "%s has no comment\n", d.QualifiedName())
		return nil
	}
	fmt.Fprintf(out, "// %s:%d-%d\n", c.File, c.BeginLine, c.EndLine)
	for _, line := range c.Text {
		fmt.Fprintln(out, line)
	}
	return nil
}
