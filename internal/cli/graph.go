package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxxscope/internal/graph"
)

// GraphDir is where graph snapshots are saved, relative to the root.
const GraphDir = ".cxxscope/graph"

var (
	graphTo           string
	graphDepth        int
	graphMaxResults   int
	graphContext      bool
	graphContextLines int
	graphJSON         bool
	graphSave         bool
	graphSnapshot     bool
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <dependencies|dependents|members|path> <target>",
	Short: "Explore relationships between declarations",
	Long: `Query the declaration graph. Nodes are declarations; a scope contains its
members and a declaration uses every declaration its types name.

Operations:
  dependencies  declarations used by the target or anything it contains
  dependents    declarations that use the target
  members       declarations the target contains
  path          shortest chain of contains and uses edges to --to

--save writes the graph to .cxxscope/graph under the root; --snapshot queries a
saved graph without loading any inputs.

Examples:
  cxxscope graph -i geo.hpp dependencies geo::Shape
  cxxscope graph -i geo.hpp dependents geo::Point --depth 3
  cxxscope graph -i geo.hpp path geo::Shape --to geo::Point --context`,
	Args: cobra.ExactArgs(2),
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
	f := graphCmd.Flags()
	f.StringVar(&graphTo, "to", "", "destination declaration for path")
	f.IntVar(&graphDepth, "depth", graph.DefaultDepth, "traversal depth")
	f.IntVar(&graphMaxResults, "max-results", graph.DefaultMaxResults, "maximum results")
	f.BoolVar(&graphContext, "context", false, "print header lines around each result")
	f.IntVar(&graphContextLines, "context-lines", graph.DefaultContextLines, "lines of context around a declaration")
	f.BoolVar(&graphJSON, "json", false, "print the response as JSON")
	f.BoolVar(&graphSave, "save", false, "save the graph snapshot under the root")
	f.BoolVar(&graphSnapshot, "snapshot", false, "query the saved snapshot instead of loading inputs")
}

func runGraph(cmd *cobra.Command, args []string) error {
	op := graph.QueryOperation(args[0])
	switch op {
	case graph.OperationDependencies, graph.OperationDependents, graph.OperationMembers:
	case graph.OperationPath:
		if graphTo == "" {
			return fmt.Errorf("path requires --to")
		}
	default:
		return fmt.Errorf("unknown operation %q (must be one of: dependencies, dependents, members, path)", args[0])
	}
	if graphSave && graphSnapshot {
		return fmt.Errorf("--save and --snapshot cannot be combined")
	}

	storage, err := graph.NewStorage(filepath.Join(rootDir, GraphDir))
	if err != nil {
		return err
	}

	var source graph.Source = storage
	if graphSnapshot {
		if !storage.Exists() {
			return fmt.Errorf("no graph snapshot in %s (run with --save first)", filepath.Join(rootDir, GraphDir))
		}
	} else {
		sess, cleanup, err := loadSession(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		data := graph.Build(sess.Root())
		if graphSave {
			if err := storage.Save(data); err != nil {
				return err
			}
		}
		source = graph.SourceFunc(func() (*graph.GraphData, error) { return data, nil })
	}

	searcher, err := graph.NewSearcher(source, rootDir)
	if err != nil {
		return err
	}
	defer searcher.Close()

	resp, err := searcher.Query(cmd.Context(), &graph.QueryRequest{
		Operation:      op,
		Target:         args[1],
		To:             graphTo,
		IncludeContext: graphContext,
		ContextLines:   graphContextLines,
		Depth:          graphDepth,
		MaxResults:     graphMaxResults,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if graphJSON {
		return writeJSON(out, resp)
	}

	for _, r := range resp.Results {
		indent := strings.Repeat("  ", max(0, r.Depth-1))
		fmt.Fprintf(out, "%s%s [%s]", indent, r.Node.Name, r.Node.Kind)
		if r.Node.File != "" {
			fmt.Fprintf(out, " %s:%d", r.Node.File, r.Node.Line)
		}
		fmt.Fprintln(out)
		if r.Context != "" {
			fmt.Fprintln(out, r.Context)
		}
	}
	if resp.Truncated {
		fmt.Fprintf(out, "... %s more\n", formatNumber(resp.TotalFound-resp.TotalReturned))
	}
	return nil
}
