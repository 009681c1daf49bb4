package decls

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/cxxscope/internal/cpptypes"
)

// GlobalName is the name of the root namespace.
const GlobalName = "::"

// Declaration is one node of the declaration tree.
//
// Kind selects which payload field is populated: Signature for callables, Var for
// variables, Enumerators for enumerations, Aliased for typedefs and ClassKey for
// classes. Apart from the comment, a Declaration is not modified after Build returns.
type Declaration struct {
	Kind       Kind
	Name       string
	ID         string
	Location   *Location
	Artificial bool
	Access     Access

	ClassKey    ClassKey
	Signature   *Signature
	Var         *VariableInfo
	Enumerators []Enumerator
	Aliased     cpptypes.Type

	parent   *Declaration
	children []*Declaration
	comment  *Comment
}

// Parent returns the enclosing declaration, or nil for the root.
func (d *Declaration) Parent() *Declaration {
	return d.parent
}

// IsRoot reports whether d is the global namespace.
func (d *Declaration) IsRoot() bool {
	return d.parent == nil
}

// Children returns the owned declarations in source order. The returned slice must
// not be modified.
func (d *Declaration) Children() []*Declaration {
	return d.children
}

// Comment returns the attached comment, or nil when none was associated.
func (d *Declaration) Comment() *Comment {
	return d.comment
}

// SetComment replaces the attached comment. Passing nil clears it.
func (d *Declaration) SetComment(c *Comment) {
	d.comment = c
}

// QualifiedName returns the "::"-joined path from the global namespace, without a
// leading "::". The root itself is "::". Anonymous scopes are skipped.
func (d *Declaration) QualifiedName() string {
	if d == nil {
		return ""
	}
	if d.parent == nil {
		return GlobalName
	}
	var parts []string
	for n := d; n != nil && n.parent != nil; n = n.parent {
		if n.Name != "" {
			parts = append(parts, n.Name)
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "::")
}

// Walk visits d and its descendants in pre-order. Returning false from fn skips the
// children of the visited node.
func (d *Declaration) Walk(fn func(*Declaration) bool) {
	if !fn(d) {
		return
	}
	for _, c := range d.children {
		c.Walk(fn)
	}
}

// Type returns the declared type of a variable or the aliased type of a typedef.
func (d *Declaration) Type() cpptypes.Type {
	switch {
	case d.Var != nil:
		return d.Var.Type
	case d.Kind == KindTypedef:
		return d.Aliased
	}
	return nil
}

// String renders d in the display format used by the CLI and error messages, for
// example "int ns::func1(int a) [free function]" or "ns::a [variable]".
func (d *Declaration) String() string {
	name := d.QualifiedName()
	switch d.Kind {
	case KindFunction, KindMemberFunction, KindConstructor, KindDestructor:
		var b strings.Builder
		if d.Signature != nil && d.Signature.Return != nil {
			b.WriteString(d.Signature.Return.String())
			b.WriteByte(' ')
		}
		b.WriteString(name)
		b.WriteByte('(')
		if d.Signature != nil {
			for i, p := range d.Signature.Params {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(formatParam(p))
			}
		}
		b.WriteByte(')')
		if d.Signature != nil && d.Signature.Const {
			b.WriteString(" const")
		}
		fmt.Fprintf(&b, " [%s]", displayKind(d))
		return b.String()
	case KindTypedef:
		if d.Aliased != nil {
			return fmt.Sprintf("%s [typedef] = %s", name, d.Aliased)
		}
	}
	return fmt.Sprintf("%s [%s]", name, displayKind(d))
}

func formatParam(p Param) string {
	s := "?"
	if p.Type != nil {
		s = p.Type.String()
	}
	if p.Name != "" {
		s += " " + p.Name
	}
	if p.Default != "" {
		s += "=" + p.Default
	}
	return s
}

func displayKind(d *Declaration) string {
	switch d.Kind {
	case KindFunction:
		return "free function"
	case KindClass:
		if d.ClassKey != "" {
			return string(d.ClassKey)
		}
	}
	return string(d.Kind)
}

// Namespace returns the single child namespace called name.
func (d *Declaration) Namespace(name string) (*Declaration, error) {
	return d.single(KindNamespace, name)
}

// Class returns the single child class, struct or union called name.
func (d *Declaration) Class(name string) (*Declaration, error) {
	return d.single(KindClass, name)
}

// Enumeration returns the single child enumeration called name.
func (d *Declaration) Enumeration(name string) (*Declaration, error) {
	return d.single(KindEnumeration, name)
}

// Variable returns the single child variable called name.
func (d *Declaration) Variable(name string) (*Declaration, error) {
	return d.single(KindVariable, name)
}

// Typedef returns the single child typedef called name.
func (d *Declaration) Typedef(name string) (*Declaration, error) {
	return d.single(KindTypedef, name)
}

func (d *Declaration) single(kind Kind, name string) (*Declaration, error) {
	var found *Declaration
	count := 0
	for _, c := range d.children {
		if c.Kind == kind && c.Name == name {
			if found == nil {
				found = c
			}
			count++
		}
	}
	switch count {
	case 0:
		return nil, &NotFoundError{Scope: d.QualifiedName(), Kind: kind, Name: name}
	case 1:
		return found, nil
	}
	return nil, &AmbiguityError{Scope: d.QualifiedName(), Kind: kind, Name: name, Count: count}
}

// Namespaces returns the child namespaces in source order.
func (d *Declaration) Namespaces() []*Declaration { return d.childrenOf(KindNamespace) }

// Classes returns the child classes, structs and unions in source order.
func (d *Declaration) Classes() []*Declaration { return d.childrenOf(KindClass) }

// Enumerations returns the child enumerations in source order.
func (d *Declaration) Enumerations() []*Declaration { return d.childrenOf(KindEnumeration) }

// Functions returns the child free functions in source order.
func (d *Declaration) Functions() []*Declaration { return d.childrenOf(KindFunction) }

// Variables returns the child variables and data members in source order.
func (d *Declaration) Variables() []*Declaration { return d.childrenOf(KindVariable) }

// MemberFunctions returns the child member functions in source order.
func (d *Declaration) MemberFunctions() []*Declaration { return d.childrenOf(KindMemberFunction) }

// Constructors returns the child constructors in source order, artificial ones included.
func (d *Declaration) Constructors() []*Declaration { return d.childrenOf(KindConstructor) }

// Typedefs returns the child typedefs in source order.
func (d *Declaration) Typedefs() []*Declaration { return d.childrenOf(KindTypedef) }

func (d *Declaration) childrenOf(kind Kind) []*Declaration {
	var out []*Declaration
	for _, c := range d.children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Lookup resolves a "::"-separated path relative to d by walking named children of
// any kind. A leading "::" starts from the root. It fails like the single-child
// lookups when a segment is missing or ambiguous.
func (d *Declaration) Lookup(path string) (*Declaration, error) {
	cur := d
	if strings.HasPrefix(path, GlobalName) {
		for cur.parent != nil {
			cur = cur.parent
		}
		path = strings.TrimPrefix(path, GlobalName)
	}
	if path == "" {
		return cur, nil
	}
	for _, seg := range strings.Split(path, "::") {
		var found *Declaration
		count := 0
		for _, c := range cur.children {
			if c.Name == seg {
				if found == nil {
					found = c
				}
				count++
			}
		}
		switch count {
		case 0:
			return nil, &NotFoundError{Scope: cur.QualifiedName(), Kind: "declaration", Name: seg}
		case 1:
			cur = found
		default:
			return nil, &AmbiguityError{Scope: cur.QualifiedName(), Kind: "declaration", Name: seg, Count: count}
		}
	}
	return cur, nil
}
