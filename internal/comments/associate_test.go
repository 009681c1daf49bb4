package comments

import (
	"os"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cxxscope/internal/cpptypes"
	"github.com/mvp-joe/cxxscope/internal/decls"
)

// Test Plan for Associate:
// - The comments.hpp scenario: namespace //! pair, enum ///, class /** */, nested enum,
//   method /// pair, constructor /** */, mutable field //!, bit-field ///
// - Artificial declarations and unrelated file comments get nothing
// - Anonymous namespaces and structs are not targets; their members keep their own comments
// - Running twice with the same records gives identical attachments
// - Adjacent same-style lines merge; a style change splits the run
// - A comment separated by another declaration or by code does not attach
// - A comment before a one-line class attaches to the class, not its member
// - Trailing comments never attach forward
// - Two declarations on one line: only the first is claimed

const commentsHeader = "../../testdata/cpp/comments.hpp"

func commentsTree(t *testing.T, file string) *decls.Declaration {
	t.Helper()
	loc := func(line int) *decls.Location { return &decls.Location{File: file, Line: line} }
	root, err := decls.Build([]decls.Record{
		{ID: "_1", Kind: decls.KindNamespace, Name: decls.GlobalName},
		{ID: "_2", Kind: decls.KindNamespace, Name: "comment", Parent: "_1", Location: loc(5)},
		{ID: "_3", Kind: decls.KindEnumeration, Name: "com_enum", Parent: "_2", Location: loc(8),
			Enumerators: []decls.Enumerator{{Name: "One"}, {Name: "Two", Value: 1}}},
		{ID: "_4", Kind: decls.KindClass, Name: "test", Parent: "_2", Location: loc(14), ClassKey: decls.ClassKeyClass},
		{ID: "_5", Kind: decls.KindMemberFunction, Name: "hello", Parent: "_4", Location: loc(18),
			Access: decls.AccessPublic, Signature: &decls.Signature{Return: cpptypes.Int()}},
		{ID: "_6", Kind: decls.KindConstructor, Name: "test", Parent: "_4", Location: loc(21),
			Access: decls.AccessPublic, Signature: &decls.Signature{}},
		{ID: "_7", Kind: decls.KindConstructor, Name: "test", Parent: "_4", Location: loc(14),
			Access: decls.AccessPublic, Artificial: true, Signature: &decls.Signature{
				Params: []decls.Param{{Type: cpptypes.ReferenceTo(cpptypes.Const(cpptypes.Declared{ID: "_4"}))}},
			}},
		{ID: "_8", Kind: decls.KindEnumeration, Name: "test_enum", Parent: "_4", Location: loc(24), Access: decls.AccessPublic,
			Enumerators: []decls.Enumerator{{Name: "One", Value: 1}, {Name: "Two", Value: 2}}},
		{ID: "_9", Kind: decls.KindVariable, Name: "val", Parent: "_4", Location: loc(30), Access: decls.AccessPublic,
			Var: &decls.VariableInfo{Type: cpptypes.Int(), Mutable: true}},
		{ID: "_10", Kind: decls.KindVariable, Name: "bit", Parent: "_4", Location: loc(33), Access: decls.AccessPublic,
			Var: &decls.VariableInfo{Type: cpptypes.UnsignedInt(), Bits: 1}},
	})
	require.NoError(t, err)
	return root
}

func scanFixture(t *testing.T) []Record {
	t.Helper()
	src, err := os.ReadFile(commentsHeader)
	require.NoError(t, err)
	records, err := Scan(commentsHeader, src)
	require.NoError(t, err)
	return records
}

func commentText(t *testing.T, d *decls.Declaration) []string {
	t.Helper()
	require.NotNil(t, d.Comment(), "%s has no comment", d)
	return d.Comment().Text
}

func TestAssociate_Fixture(t *testing.T) {
	t.Parallel()

	root := commentsTree(t, commentsHeader)
	res := Associate(root, scanFixture(t))

	assert.Equal(t, Result{Groups: 10, Attached: 8, Dropped: 2}, res)

	ns, err := root.Namespace("comment")
	require.NoError(t, err)
	assert.Equal(t, []string{"//! Namespace Comment", "//! Across multiple lines"}, commentText(t, ns))

	enum, err := ns.Enumeration("com_enum")
	require.NoError(t, err)
	assert.Equal(t, []string{"/// Outside Class enum comment"}, commentText(t, enum))

	class, err := ns.Class("test")
	require.NoError(t, err)
	assert.Equal(t, []string{"/** class comment */"}, commentText(t, class))

	inner, err := class.Enumeration("test_enum")
	require.NoError(t, err)
	assert.Equal(t, []string{"/// inside class enum comment"}, commentText(t, inner))

	method := class.MemberFunctions()[0]
	assert.Equal(t, []string{"/// cxx comment", "/// with multiple lines"}, commentText(t, method))
	assert.Equal(t, 16, method.Comment().BeginLine)
	assert.Equal(t, 17, method.Comment().EndLine)

	ctors := class.Constructors()
	require.Len(t, ctors, 2)
	assert.Equal(t, []string{"/** doc comment */"}, commentText(t, ctors[0]))
	assert.Nil(t, ctors[1].Comment(), "artificial constructor")

	for i, want := range []string{"//! mutable field comment", "/// bit field comment"} {
		assert.Equal(t, []string{want}, commentText(t, class.Variables()[i]))
	}
}

func TestAssociate_Idempotent(t *testing.T) {
	t.Parallel()

	root := commentsTree(t, commentsHeader)
	records := scanFixture(t)

	snapshot := func() map[string]*decls.Comment {
		out := map[string]*decls.Comment{}
		root.Walk(func(d *decls.Declaration) bool {
			if c := d.Comment(); c != nil {
				cp := *c
				out[d.ID] = &cp
			}
			return true
		})
		return out
	}

	first := Associate(root, records)
	before := snapshot()
	second := Associate(root, records)

	assert.Equal(t, first, second)
	assert.Equal(t, before, snapshot())
}

// sourceTree builds a namespace-free tree whose declarations sit on the given lines
// of file "src.hpp".
func sourceTree(t *testing.T, vars map[string]int, classes map[string]int) *decls.Declaration {
	t.Helper()
	records := []decls.Record{{ID: "root", Kind: decls.KindNamespace, Name: decls.GlobalName}}
	for _, name := range sortedKeys(classes) {
		records = append(records, decls.Record{
			ID: name, Kind: decls.KindClass, Name: name, Parent: "root",
			Location: &decls.Location{File: "src.hpp", Line: classes[name]},
		})
	}
	for _, name := range sortedKeys(vars) {
		parent := "root"
		if _, ok := classes[name[:1]]; ok {
			parent = name[:1]
		}
		records = append(records, decls.Record{
			ID: name, Kind: decls.KindVariable, Name: name, Parent: parent,
			Location: &decls.Location{File: "src.hpp", Line: vars[name]},
			Var:      &decls.VariableInfo{Type: cpptypes.Int()},
		})
	}
	root, err := decls.Build(records)
	require.NoError(t, err)
	return root
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func scanString(t *testing.T, src string) []Record {
	t.Helper()
	records, err := Scan("src.hpp", []byte(src))
	require.NoError(t, err)
	return records
}

func TestAssociate_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		vars    map[string]int
		classes map[string]int
		want    map[string][]string // nil entry means no comment
	}{
		{
			name: "adjacent doc lines merge",
			src:  "/// first\n/// second\nint x;\n",
			vars: map[string]int{"x": 3},
			want: map[string][]string{"x": {"/// first", "/// second"}},
		},
		{
			name: "style change splits the run",
			src:  "/// doc\n//! bang\nint x;\n",
			vars: map[string]int{"x": 3},
			want: map[string][]string{"x": {"//! bang"}},
		},
		{
			name: "blank lines between comment and declaration",
			src:  "// spaced\n\n\nint x;\n",
			vars: map[string]int{"x": 4},
			want: map[string][]string{"x": {"// spaced"}},
		},
		{
			name: "separated by another declaration",
			src:  "// about first\nint first;\nint second;\n",
			vars: map[string]int{"first": 2, "second": 3},
			want: map[string][]string{"first": {"// about first"}, "second": nil},
		},
		{
			name: "separated by code",
			src:  "// unrelated\n#define X 1\n\nint x;\n",
			vars: map[string]int{"x": 4},
			want: map[string][]string{"x": nil},
		},
		{
			name:    "one-line class keeps the comment",
			src:     "/// doc\nstruct S { int Sx; };\n",
			vars:    map[string]int{"Sx": 2},
			classes: map[string]int{"S": 2},
			want:    map[string][]string{"S": {"/// doc"}, "Sx": nil},
		},
		{
			name: "trailing comment does not attach forward",
			src:  "int a; // trailing\nint b;\n",
			vars: map[string]int{"a": 1, "b": 2},
			want: map[string][]string{"a": nil, "b": nil},
		},
		{
			name: "only the first declaration on a line is claimed",
			src:  "/** both */\nint p, q;\n",
			vars: map[string]int{"p": 2, "q": 2},
			want: map[string][]string{"p": {"/** both */"}, "q": nil},
		},
		{
			name: "multi-line block keeps each line",
			src:  "/*!\n * block\n */\nint x;\n",
			vars: map[string]int{"x": 4},
			want: map[string][]string{"x": {"/*!", "* block", "*/"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := sourceTree(t, tt.vars, tt.classes)
			Associate(root, scanString(t, tt.src))

			for name, want := range tt.want {
				d, err := root.Lookup(qualify(name, tt.classes))
				require.NoError(t, err)
				if want == nil {
					assert.Nil(t, d.Comment(), name)
					continue
				}
				require.NotNil(t, d.Comment(), name)
				assert.Equal(t, want, d.Comment().Text, name)
			}
		})
	}
}

func qualify(name string, classes map[string]int) string {
	if _, ok := classes[name]; ok {
		return name
	}
	if _, ok := classes[name[:1]]; ok {
		return name[:1] + "::" + name
	}
	return name
}

func TestAssociate_RecordsWithoutFollowingLine(t *testing.T) {
	t.Parallel()

	root := sourceTree(t, map[string]int{"x": 3, "y": 6}, nil)
	res := Associate(root, []Record{
		FromLines("src.hpp", 1, []string{"/// one", "/// two"}, 0),
		FromLines("src.hpp", 5, []string{"  // indented  "}, 0),
	})

	assert.Equal(t, 2, res.Attached)
	x, _ := root.Variable("x")
	y, _ := root.Variable("y")
	assert.Equal(t, []string{"/// one", "/// two"}, x.Comment().Text)
	assert.Equal(t, []string{"// indented"}, y.Comment().Text)
}

func TestAssociate_AnonymousDeclarations(t *testing.T) {
	t.Parallel()

	loc := func(line int) *decls.Location { return &decls.Location{File: "src.hpp", Line: line} }
	root, err := decls.Build([]decls.Record{
		{ID: "_1", Kind: decls.KindNamespace, Name: decls.GlobalName},
		{ID: "_2", Kind: decls.KindNamespace, Parent: "_1", Location: loc(2)},
		{ID: "_3", Kind: decls.KindVariable, Name: "hidden", Parent: "_2", Location: loc(4),
			Var: &decls.VariableInfo{Type: cpptypes.Int()}},
		{ID: "_4", Kind: decls.KindClass, Parent: "_1", Location: loc(7), ClassKey: decls.ClassKeyStruct},
		{ID: "_5", Kind: decls.KindVariable, Name: "field", Parent: "_4", Location: loc(7),
			Var: &decls.VariableInfo{Type: cpptypes.Int()}},
	})
	require.NoError(t, err)

	// 1: /// namespace doc   2: namespace {   3: /// hidden doc   4: int hidden;
	// 6: /// struct doc      7: struct { int field; } s;
	res := Associate(root, []Record{
		FromLines("src.hpp", 1, []string{"/// namespace doc"}, 2),
		FromLines("src.hpp", 3, []string{"/// hidden doc"}, 4),
		FromLines("src.hpp", 6, []string{"/// struct doc"}, 7),
	})

	anonNS := root.Namespaces()[0]
	anonStruct := root.Classes()[0]
	assert.Nil(t, anonNS.Comment())
	assert.Nil(t, anonStruct.Comment())

	hidden := anonNS.Variables()[0]
	assert.Equal(t, []string{"/// hidden doc"}, commentText(t, hidden))

	// The field shares the struct's line, but its scope opens after the comment.
	field := anonStruct.Variables()[0]
	assert.Nil(t, field.Comment())

	assert.Equal(t, Result{Groups: 3, Attached: 1, Dropped: 2}, res)
}

func TestAssociate_OtherFileIgnored(t *testing.T) {
	t.Parallel()

	root := sourceTree(t, map[string]int{"x": 2}, nil)
	res := Associate(root, []Record{FromLines("other.hpp", 1, []string{"// elsewhere"}, 2)})

	assert.Equal(t, Result{Groups: 1, Dropped: 1}, res)
	x, _ := root.Variable("x")
	assert.Nil(t, x.Comment())
}
