package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/cxxscope/internal/decls"
	"github.com/mvp-joe/cxxscope/internal/session"
)

// TreeProvider exposes the current declaration tree.
type TreeProvider interface {
	Root() *decls.Declaration
}

// DeclarationRequest represents the cxx_declaration tool parameters.
type DeclarationRequest struct {
	Name            string `json:"name"`
	IncludeChildren bool   `json:"include_children"`
}

// DeclarationResponse is the cxx_declaration result.
type DeclarationResponse struct {
	Declaration decls.Summary   `json:"declaration"`
	Parent      string          `json:"parent,omitempty"`
	Children    []decls.Summary `json:"children,omitempty"`
}

// AddDeclarationTool registers the cxx_declaration tool with an MCP server.
func AddDeclarationTool(s *server.MCPServer, tree TreeProvider) {
	tool := mcp.NewTool(
		"cxx_declaration",
		mcp.WithDescription("Describe one C++ declaration by qualified name: kind, signature, type, location and its documentation comment. Optionally lists the declarations it contains. Overloaded names are ambiguous here; use cxx_find to tell them apart."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Qualified name (e.g. 'ns::Widget' or '::ns::Widget::size')")),
		mcp.WithBoolean("include_children",
			mcp.Description("Include the declarations this one contains (default: false)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createDeclarationHandler(tree))
}

// createDeclarationHandler creates the handler function for the cxx_declaration tool.
func createDeclarationHandler(tree TreeProvider) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req DeclarationRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if strings.TrimSpace(req.Name) == "" {
			return mcp.NewToolResultError("name parameter is required"), nil
		}

		root := tree.Root()
		if root == nil {
			return mcp.NewToolResultError(session.ErrNoInputs.Error()), nil
		}

		name := req.Name
		if !strings.HasPrefix(name, decls.GlobalName) {
			name = decls.GlobalName + name
		}
		d, err := root.Lookup(name)
		if err != nil {
			if errors.Is(err, decls.ErrNotFound) || errors.Is(err, decls.ErrAmbiguous) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, fmt.Errorf("lookup failed: %w", err)
		}

		resp := DeclarationResponse{Declaration: decls.Summarize(d)}
		if p := d.Parent(); p != nil {
			resp.Parent = p.QualifiedName()
		}
		if req.IncludeChildren {
			resp.Children = decls.SummarizeAll(d.Children())
		}
		return jsonResult(resp)
	}
}
