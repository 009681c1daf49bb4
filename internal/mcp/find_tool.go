package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/cxxscope/internal/decls"
	"github.com/mvp-joe/cxxscope/internal/query"
	"github.com/mvp-joe/cxxscope/internal/session"
)

// Find limits
const (
	DefaultFindLimit = 50
	MaxFindLimit     = 500
)

// Finder runs criteria against the current declaration tree.
type Finder interface {
	Find(c *query.Criteria) ([]*decls.Declaration, error)
	GetSingle(c *query.Criteria) (*decls.Declaration, error)
}

// FindRequest represents the cxx_find tool parameters.
type FindRequest struct {
	query.Filter
	Single bool `json:"single"` // require exactly one match
	Limit  int  `json:"limit"`
}

// FindResponse is the cxx_find result.
type FindResponse struct {
	Criteria      string          `json:"criteria"`
	Results       []decls.Summary `json:"results"`
	TotalFound    int             `json:"total_found"`
	TotalReturned int             `json:"total_returned"`
	Truncated     bool            `json:"truncated"`
}

// AddFindTool registers the cxx_find tool with an MCP server.
func AddFindTool(s *server.MCPServer, finder Finder) {
	tool := mcp.NewTool(
		"cxx_find",
		mcp.WithDescription("Find C++ declarations by kind, name, qualified name, return type, parameter types, variable type or header. All given criteria must match. Type criteria are C++ spellings such as 'const std::string &' and compare exactly. Results are in declaration order with comments attached."),
		mcp.WithString("kind",
			mcp.Description("'declaration' (default), 'calldef' (any callable), 'variable', 'namespace', 'class', 'enumeration', 'typedef', or a specific kind such as 'member function' or 'constructor'")),
		mcp.WithString("name",
			mcp.Description("Unqualified declaration name (e.g. 'func1')")),
		mcp.WithString("qualified_name",
			mcp.Description("Fully qualified name (e.g. 'ns::func1' or '::ns::func1')")),
		mcp.WithString("return_type",
			mcp.Description("Return type of a callable (e.g. 'double')")),
		mcp.WithArray("param_types",
			mcp.Description("Exact parameter types of a callable, in order (e.g. ['int', 'const char *'])")),
		mcp.WithBoolean("no_params",
			mcp.Description("Match callables without parameters")),
		mcp.WithString("type",
			mcp.Description("Type of a variable or field (e.g. 'int')")),
		mcp.WithString("header",
			mcp.Description("Glob matched against the declaring file (e.g. '**/geometry/*.hpp')")),
		mcp.WithBoolean("single",
			mcp.Description("Fail unless exactly one declaration matches (default: false)")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 50, max: 500)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createFindHandler(finder))
}

// createFindHandler creates the handler function for the cxx_find tool.
func createFindHandler(finder Finder) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req FindRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		criteria, err := req.Filter.Criteria()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var found []*decls.Declaration
		if req.Single {
			var d *decls.Declaration
			d, err = finder.GetSingle(criteria)
			if d != nil {
				found = []*decls.Declaration{d}
			}
		} else {
			found, err = finder.Find(criteria)
		}
		if err != nil {
			if isQueryError(err) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, fmt.Errorf("find failed: %w", err)
		}

		limit := req.Limit
		if limit <= 0 {
			limit = DefaultFindLimit
		}
		limit = min(limit, MaxFindLimit)

		returned := found
		if len(returned) > limit {
			returned = returned[:limit]
		}

		return jsonResult(FindResponse{
			Criteria:      criteria.String(),
			Results:       decls.SummarizeAll(returned),
			TotalFound:    len(found),
			TotalReturned: len(returned),
			Truncated:     len(returned) < len(found),
		})
	}
}

// isQueryError reports errors caused by the request or the loaded tree rather
// than by the server.
func isQueryError(err error) bool {
	return errors.Is(err, query.ErrInvalidCriteria) ||
		errors.Is(err, query.ErrNoMatch) ||
		errors.Is(err, query.ErrMultipleMatches) ||
		errors.Is(err, decls.ErrNotFound) ||
		errors.Is(err, decls.ErrAmbiguous) ||
		errors.Is(err, session.ErrNoInputs)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
