package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/cxxscope/internal/graph"
)

// GraphQuerier is the interface for graph query operations.
type GraphQuerier interface {
	Query(ctx context.Context, req *graph.QueryRequest) (*graph.QueryResponse, error)
}

// GraphRequest represents the cxx_graph tool parameters.
type GraphRequest struct {
	Operation      string `json:"operation"`       // "dependencies", "dependents", "members", "path"
	Target         string `json:"target"`          // Declaration id or qualified name
	To             string `json:"to"`              // Destination for "path"
	IncludeContext *bool  `json:"include_context"` // Whether to include source lines (default: true)
	ContextLines   int    `json:"context_lines"`   // Number of context lines (default: 3)
	Depth          int    `json:"depth"`           // Traversal depth (default: 1)
	MaxResults     int    `json:"max_results"`     // Maximum results (default: 100)
}

var graphOperations = map[string]graph.QueryOperation{
	"dependencies": graph.OperationDependencies,
	"dependents":   graph.OperationDependents,
	"members":      graph.OperationMembers,
	"path":         graph.OperationPath,
}

// AddGraphTool registers the cxx_graph tool with an MCP server.
func AddGraphTool(s *server.MCPServer, querier GraphQuerier) {
	tool := mcp.NewTool(
		"cxx_graph",
		mcp.WithDescription("Query relationships between C++ declarations for impact analysis and dependency exploration. Operations: dependencies (declarations whose types this one or its members use), dependents (declarations that use this one's type), members (declarations this scope contains), path (shortest chain of containment and type uses from target to 'to')."),
		mcp.WithString("operation",
			mcp.Required(),
			mcp.Description("Type of query: 'dependencies', 'dependents', 'members', or 'path'")),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Declaration qualified name or id (e.g. 'geo::Shape', '_6')")),
		mcp.WithString("to",
			mcp.Description("Destination declaration for the 'path' operation")),
		mcp.WithBoolean("include_context",
			mcp.Description("Include header lines around each result (default: true)")),
		mcp.WithNumber("context_lines",
			mcp.Description("Number of context lines around a declaration (default: 3, max: 20)")),
		mcp.WithNumber("depth",
			mcp.Description("Traversal depth for recursive queries (default: 1, max: 10)")),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results to return (default: 100, max: 500)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createGraphHandler(querier))
}

// createGraphHandler creates the handler function for the cxx_graph tool.
func createGraphHandler(querier GraphQuerier) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args GraphRequest
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		if args.Operation == "" {
			return mcp.NewToolResultError("operation parameter is required"), nil
		}
		op, valid := graphOperations[args.Operation]
		if !valid {
			return mcp.NewToolResultError(fmt.Sprintf("invalid operation: %s (must be one of: dependencies, dependents, members, path)", args.Operation)), nil
		}
		if args.Target == "" {
			return mcp.NewToolResultError("target parameter is required"), nil
		}
		if op == graph.OperationPath && args.To == "" {
			return mcp.NewToolResultError("to parameter is required for path"), nil
		}

		req := &graph.QueryRequest{
			Operation:      op,
			Target:         args.Target,
			To:             args.To,
			IncludeContext: true,
			ContextLines:   max(0, min(args.ContextLines, graph.MaxContextLines)),
			Depth:          max(1, min(args.Depth, graph.MaxDepth)),
			MaxResults:     graph.DefaultMaxResults,
		}
		if args.IncludeContext != nil {
			req.IncludeContext = *args.IncludeContext
		}
		if args.MaxResults != 0 {
			req.MaxResults = max(1, min(args.MaxResults, 500))
		}

		response, err := querier.Query(ctx, req)
		if err != nil {
			if errors.Is(err, graph.ErrNodeNotFound) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, fmt.Errorf("graph query failed: %w", err)
		}

		return jsonResult(response)
	}
}
