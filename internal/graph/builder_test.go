package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cxxscope/internal/castxml"
	"github.com/mvp-joe/cxxscope/internal/decls"
)

// Test Plan for Build:
// - Every declaration below the root becomes a node in pre-order
// - Contains edges link non-root scopes to their children
// - Uses edges follow pointers, references, cv-qualifiers and typedef names
// - Fundamental types produce no edge
// - A nil tree yields an empty graph

const graphXML = "../../testdata/castxml/graph.xml"

func loadTree(t *testing.T) *decls.Declaration {
	t.Helper()
	d, err := castxml.ReadFile(graphXML, castxml.WithSource(nil))
	require.NoError(t, err)
	root, err := decls.Build(d.Records)
	require.NoError(t, err)
	return root
}

func TestBuild(t *testing.T) {
	t.Parallel()

	data := Build(loadTree(t))

	var names []string
	for _, n := range data.Nodes {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{
		"geo",
		"geo::Point", "geo::Point::x", "geo::Point::y",
		"geo::Vec",
		"geo::Shape", "geo::Shape::center", "geo::Shape::next", "geo::Shape::area",
		"geo::make",
	}, names)

	assert.Equal(t, Node{ID: "_4", Name: "geo::Vec", Kind: decls.KindTypedef, File: "../../testdata/cpp/graph.hpp", Line: 11}, data.Nodes[4])

	var contains, uses []Edge
	for _, e := range data.Edges {
		switch e.Type {
		case EdgeContains:
			contains = append(contains, e)
		case EdgeUses:
			uses = append(uses, e)
		}
	}
	assert.Len(t, contains, 9)
	assert.Equal(t, []Edge{
		{From: "_4", To: "_3", Type: EdgeUses},  // Vec -> Point
		{From: "_9", To: "_3", Type: EdgeUses},  // center -> Point
		{From: "_10", To: "_5", Type: EdgeUses}, // next -> Shape
		{From: "_11", To: "_4", Type: EdgeUses}, // area -> Vec
		{From: "_6", To: "_5", Type: EdgeUses},  // make -> Shape
		{From: "_6", To: "_3", Type: EdgeUses},  // make -> Point
	}, uses)

	assert.Equal(t, GraphVersion, data.Metadata.Version)
	assert.Equal(t, 10, data.Metadata.NodeCount)
	assert.Equal(t, 15, data.Metadata.EdgeCount)
}

func TestBuild_Nil(t *testing.T) {
	t.Parallel()

	data := Build(nil)
	assert.Empty(t, data.Nodes)
	assert.Empty(t, data.Edges)
}
