package graph

import (
	"context"
	"errors"
)

// QueryOperation represents the type of graph query to perform.
type QueryOperation string

const (
	// OperationDependencies follows uses edges out of the target and everything
	// it contains.
	OperationDependencies QueryOperation = "dependencies"
	// OperationDependents follows uses edges into the target.
	OperationDependents QueryOperation = "dependents"
	// OperationMembers follows contains edges out of the target.
	OperationMembers QueryOperation = "members"
	// OperationPath returns the shortest chain of contains and uses edges from
	// the target to To.
	OperationPath QueryOperation = "path"
)

// Query defaults and limits
const (
	DefaultDepth        = 1
	DefaultMaxResults   = 100
	DefaultContextLines = 3
	MaxDepth            = 10
	MaxContextLines     = 20
	MaxFileCacheSize    = 100
)

// ErrNodeNotFound is returned when a query target or destination names no node.
var ErrNodeNotFound = errors.New("graph node not found")

// QueryRequest represents a graph query request. Target and To accept a
// declaration id or a qualified name; a name shared by overloads selects all of
// them.
type QueryRequest struct {
	Operation      QueryOperation // Type of query
	Target         string         // Starting declaration
	To             string         // For path operation: destination declaration
	IncludeContext bool           // Whether to include source lines
	ContextLines   int            // Lines around the declaration (default: 3)
	Depth          int            // Traversal depth (default: 1)
	MaxResults     int            // Maximum number of results (default: 100)
}

// QueryResponse represents the response to a graph query.
type QueryResponse struct {
	Operation     string        `json:"operation"`
	Target        string        `json:"target"`
	Results       []QueryResult `json:"results"`
	TotalFound    int           `json:"total_found"`
	TotalReturned int           `json:"total_returned"`
	Truncated     bool          `json:"truncated"`
	Metadata      ResponseMeta  `json:"metadata"`
}

// QueryResult represents a single result from a graph query.
type QueryResult struct {
	Node    *Node  `json:"node"`
	Context string `json:"context,omitempty"` // Source snippet if IncludeContext=true
	Depth   int    `json:"depth,omitempty"`   // Distance from the target
}

// ResponseMeta contains metadata about the query execution.
type ResponseMeta struct {
	TookMs int    `json:"took_ms"`
	Source string `json:"source"` // Always "graph"
}

// Searcher provides graph query capabilities with reverse indexes.
type Searcher interface {
	// Query executes a graph query and returns results.
	Query(ctx context.Context, req *QueryRequest) (*QueryResponse, error)

	// Reload reloads the graph from its source.
	Reload(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Source supplies graph data to a Searcher.
type Source interface {
	Load() (*GraphData, error)
}

// SourceFunc adapts a function to Source, typically building from a live tree.
type SourceFunc func() (*GraphData, error)

// Load calls f.
func (f SourceFunc) Load() (*GraphData, error) { return f() }
