package comments

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
)

// Scan extracts every comment in source, in source order. Files ending in .c are
// parsed with the C grammar, everything else with the C++ grammar.
func Scan(file string, source []byte) ([]Record, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(languageFor(file)); err != nil {
		return nil, fmt.Errorf("set language for %s: %w", file, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s", file)
	}
	defer tree.Close()

	var records []Record
	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		if n.Kind() == "comment" {
			records = append(records, NewRecord(file, source, int(n.StartByte()), int(n.EndByte())))
			return false
		}
		return true
	})
	return records, nil
}

func languageFor(file string) *sitter.Language {
	if strings.EqualFold(filepath.Ext(file), ".c") {
		return sitter.NewLanguage(c.Language())
	}
	return sitter.NewLanguage(cpp.Language())
}

// walkTree walks the syntax tree depth-first, calling visitor for each node.
// If visitor returns false, children of that node are not visited.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkTree(node.Child(uint(i)), visitor)
	}
}
