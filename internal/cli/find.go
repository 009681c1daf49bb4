package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxxscope/internal/decls"
	"github.com/mvp-joe/cxxscope/internal/query"
)

var (
	findFilter query.Filter
	findSingle bool
	findLimit  int
	findJSON   bool
)

// findCmd represents the find command
var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Find declarations matching criteria",
	Long: `Find declarations in the loaded tree. Every given criterion must match.

Type criteria are C++ spellings such as "const std::string &" and are parsed
into types before they are compared.

Examples:
  cxxscope find -i widget.xml --kind calldef --return-type double
  cxxscope find -i widget.xml --kind variable --type int
  cxxscope find -i widget.xml --name resize --param-type int --param-type int --single
  cxxscope find --qualified-name ns::Widget --json`,
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	f := findCmd.Flags()
	f.StringVar(&findFilter.Kind, "kind", "", "declaration, calldef, variable, namespace, class, enumeration, typedef, or a specific kind")
	f.StringVar(&findFilter.Name, "name", "", "unqualified name")
	f.StringVar(&findFilter.QualifiedName, "qualified-name", "", "fully qualified name")
	f.StringVar(&findFilter.ReturnType, "return-type", "", "return type of a callable")
	f.StringArrayVar(&findFilter.ParamTypes, "param-type", nil, "parameter type, in order (repeatable)")
	f.BoolVar(&findFilter.NoParams, "no-params", false, "match callables without parameters")
	f.StringVar(&findFilter.Type, "type", "", "type of a variable or field")
	f.StringVar(&findFilter.Header, "header", "", "glob matched against the declaring file")
	f.BoolVar(&findSingle, "single", false, "fail unless exactly one declaration matches")
	f.IntVar(&findLimit, "limit", 0, "maximum results to print (0 prints all)")
	f.BoolVar(&findJSON, "json", false, "print results as JSON")
}

func runFind(cmd *cobra.Command, args []string) error {
	criteria, err := findFilter.Criteria()
	if err != nil {
		return err
	}

	sess, cleanup, err := loadSession(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var found []*decls.Declaration
	if findSingle {
		d, err := sess.GetSingle(criteria)
		if err != nil {
			return err
		}
		found = []*decls.Declaration{d}
	} else {
		found, err = sess.Find(criteria)
		if err != nil {
			return err
		}
	}

	total := len(found)
	if findLimit > 0 && len(found) > findLimit {
		found = found[:findLimit]
	}

	out := cmd.OutOrStdout()
	if findJSON {
		return writeJSON(out, decls.SummarizeAll(found))
	}

	for _, d := range found {
		fmt.Fprintln(out, d.String())
		if d.Location != nil {
			fmt.Fprintf(out, "    %s\n", d.Location.String())
		}
	}
	if total > len(found) {
		fmt.Fprintf(out, "... %s more\n", formatNumber(total-len(found)))
	}
	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s of %s\n", formatNumber(total), criteria.String())
	}
	return nil
}
