// Package cpptypes models C++ types as immutable, structurally comparable values.
//
// Every Type is one of a closed set of variants: Fundamental, Pointer, Reference,
// CV, Array, Declared and Function. Two Types are equal when they denote the same
// type, no matter how they were constructed: a Type parsed from the spelling
// "int const &" is equal to ReferenceTo(Const(Int())).
package cpptypes

import (
	"strconv"
	"strings"
)

// Type is a C++ type. Implementations are the variant structs in this package.
type Type interface {
	// String returns the canonical spelling of the type.
	String() string

	isType()
}

// DeclRef is a non-owning reference from a Declared type to the declaration it names.
type DeclRef interface {
	QualifiedName() string
}

// Fundamental is a builtin type such as int, double or unsigned char.
// Name is always the canonical spelling (see FundamentalOf).
type Fundamental struct {
	Name string
}

// Pointer is a pointer to Elem.
type Pointer struct {
	Elem Type
}

// Reference is an lvalue (or rvalue, when RValue is set) reference to Elem.
type Reference struct {
	Elem   Type
	RValue bool
}

// CV is a const and/or volatile qualified Base. Use Qualified to construct it:
// a CV never wraps another CV and always has at least one flag set.
type CV struct {
	Const    bool
	Volatile bool
	Base     Type
}

// Array is an array of Size elements of Elem. Size is -1 when unknown.
type Array struct {
	Elem Type
	Size int
}

// Declared names a user declaration (class, struct, union, enumeration or typedef).
//
// ID is the builder-level identifier used to resolve Ref; neither ID nor Ref take
// part in equality, which compares qualified names only.
type Declared struct {
	Name string
	ID   string
	Ref  DeclRef
}

// Function is a function type, as seen through function pointers.
type Function struct {
	Return Type
	Params []Type
}

func (Fundamental) isType() {}
func (Pointer) isType()     {}
func (Reference) isType()   {}
func (CV) isType()          {}
func (Array) isType()       {}
func (Declared) isType()    {}
func (Function) isType()    {}

// QualifiedName returns the name the type refers to, without a leading "::".
// A resolved reference wins over the stored name.
func (d Declared) QualifiedName() string {
	if d.Ref != nil {
		if name := d.Ref.QualifiedName(); name != "" {
			return strings.TrimPrefix(name, "::")
		}
	}
	return strings.TrimPrefix(d.Name, "::")
}

func (f Fundamental) String() string { return f.Name }

func (p Pointer) String() string {
	if fn, ok := p.Elem.(Function); ok {
		return fn.signature("(*)")
	}
	return str(p.Elem) + " *"
}

func (r Reference) String() string {
	if r.RValue {
		return str(r.Elem) + " &&"
	}
	return str(r.Elem) + " &"
}

func (c CV) String() string {
	s := str(c.Base)
	if c.Const {
		s += " const"
	}
	if c.Volatile {
		s += " volatile"
	}
	return s
}

func (a Array) String() string {
	if a.Size < 0 {
		return str(a.Elem) + "[]"
	}
	return str(a.Elem) + "[" + strconv.Itoa(a.Size) + "]"
}

func (d Declared) String() string { return d.QualifiedName() }

func (f Function) String() string { return f.signature("") }

func (f Function) signature(declarator string) string {
	var b strings.Builder
	b.WriteString(str(f.Return))
	b.WriteByte(' ')
	b.WriteString(declarator)
	b.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(str(p))
	}
	b.WriteByte(')')
	return b.String()
}

func str(t Type) string {
	if t == nil {
		return "?"
	}
	return t.String()
}
