package graph

import (
	"time"

	"github.com/mvp-joe/cxxscope/internal/decls"
)

// Node is one declaration of the tree. The global namespace is not a node.
type Node struct {
	ID   string     `json:"id"`             // Declaration id (e.g. "_8", "tu1:_4")
	Name string     `json:"name"`           // Qualified name without leading "::"
	Kind decls.Kind `json:"kind"`           // Declaration kind
	File string     `json:"file,omitempty"` // Source file as recorded by castxml
	Line int        `json:"line,omitempty"` // 1-indexed, 0 when unknown
}

// EdgeType represents the type of relationship between declarations.
type EdgeType string

const (
	EdgeContains EdgeType = "contains" // Scope owns declaration
	EdgeUses     EdgeType = "uses"     // Declaration's type names another declaration
)

// Edge represents a relationship between two declarations.
type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Type EdgeType `json:"type"`
}

// GraphData represents the complete declaration graph stored in JSON.
type GraphData struct {
	Metadata GraphMetadata `json:"_metadata"`
	Nodes    []Node        `json:"nodes"`
	Edges    []Edge        `json:"edges"`
}

// GraphMetadata contains metadata about the graph.
type GraphMetadata struct {
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	NodeCount   int       `json:"node_count"`
	EdgeCount   int       `json:"edge_count"`
}
