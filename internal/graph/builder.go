package graph

import (
	"time"

	"github.com/mvp-joe/cxxscope/internal/cpptypes"
	"github.com/mvp-joe/cxxscope/internal/decls"
)

// Build derives the declaration graph of a tree: one node per declaration below
// the root, a contains edge from every non-root scope to each child, and a uses
// edge from a declaration to every declaration its types name.
//
// Unresolved type references produce no edge.
func Build(root *decls.Declaration) *GraphData {
	data := &GraphData{Nodes: []Node{}, Edges: []Edge{}}
	if root == nil {
		return data
	}

	root.Walk(func(d *decls.Declaration) bool {
		if d.IsRoot() {
			return true
		}
		data.Nodes = append(data.Nodes, nodeFor(d))

		if p := d.Parent(); p != nil && !p.IsRoot() {
			data.Edges = append(data.Edges, Edge{From: p.ID, To: d.ID, Type: EdgeContains})
		}
		for _, id := range usedDeclarations(d) {
			data.Edges = append(data.Edges, Edge{From: d.ID, To: id, Type: EdgeUses})
		}
		return true
	})

	data.Metadata = GraphMetadata{
		Version:     GraphVersion,
		GeneratedAt: time.Now(),
		NodeCount:   len(data.Nodes),
		EdgeCount:   len(data.Edges),
	}
	return data
}

func nodeFor(d *decls.Declaration) Node {
	n := Node{ID: d.ID, Name: d.QualifiedName(), Kind: d.Kind}
	if d.Location != nil {
		n.File = d.Location.File
		n.Line = d.Location.Line
	}
	return n
}

// usedDeclarations returns the ids of the declarations named by d's return,
// parameter, variable and aliased types, in first-seen order.
func usedDeclarations(d *decls.Declaration) []string {
	var types []cpptypes.Type
	if d.Signature != nil {
		types = append(types, d.Signature.Return)
		types = append(types, d.Signature.ParamTypes()...)
	}
	if d.Var != nil {
		types = append(types, d.Var.Type)
	}
	types = append(types, d.Aliased)

	var ids []string
	seen := map[string]bool{d.ID: true}
	for _, t := range types {
		cpptypes.Walk(t, func(t cpptypes.Type) {
			declared, ok := t.(cpptypes.Declared)
			if !ok {
				return
			}
			ref, ok := declared.Ref.(*decls.Declaration)
			if !ok || ref == nil || ref.IsRoot() || seen[ref.ID] {
				return
			}
			seen[ref.ID] = true
			ids = append(ids, ref.ID)
		})
	}
	return ids
}
