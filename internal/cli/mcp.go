package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxxscope/internal/logging"
	"github.com/mvp-joe/cxxscope/internal/mcp"
)

var (
	mcpWatch    bool
	mcpDebounce time.Duration
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the declaration tree over MCP",
	Long: `Start a Model Context Protocol server on stdio so coding assistants can
query the loaded declarations.

Tools:
  cxx_find         find declarations by kind, name and type
  cxx_declaration  describe one declaration with its comment
  cxx_graph        dependencies, dependents, members and paths
  cxx_status       what is loaded and reload statistics

With --watch, headers under the root are watched and the tree is reloaded
when they change. A failed reload keeps serving the previous tree.

Example:
  cxxscope mcp --watch`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().BoolVar(&mcpWatch, "watch", false, "reload when headers change")
	mcpCmd.Flags().DurationVar(&mcpDebounce, "debounce", 0, "quiet period before a reload (default 500ms)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	// stdout carries the protocol
	quiet = true

	sess, cleanup, err := loadSession(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	server, err := mcp.NewServer(sess, mcp.Config{
		Version:  Version,
		Watch:    mcpWatch,
		Debounce: mcpDebounce,
		Logger:   logging.FromContext(cmd.Context()),
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	if err := server.Serve(cmd.Context()); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
