package decls

import (
	"fmt"

	"github.com/mvp-joe/cxxscope/internal/cpptypes"
)

// Kind represents the variant of a declaration.
type Kind string

const (
	KindNamespace      Kind = "namespace"
	KindClass          Kind = "class"
	KindEnumeration    Kind = "enumeration"
	KindFunction       Kind = "function"
	KindVariable       Kind = "variable"
	KindConstructor    Kind = "constructor"
	KindDestructor     Kind = "destructor"
	KindMemberFunction Kind = "member function"
	KindTypedef        Kind = "typedef"
)

// Kinds lists every declaration kind.
var Kinds = []Kind{
	KindNamespace, KindClass, KindEnumeration, KindFunction, KindVariable,
	KindConstructor, KindDestructor, KindMemberFunction, KindTypedef,
}

// Callable reports whether declarations of this kind carry a Signature.
func (k Kind) Callable() bool {
	switch k {
	case KindFunction, KindMemberFunction, KindConstructor, KindDestructor:
		return true
	}
	return false
}

// Container reports whether declarations of this kind own children.
func (k Kind) Container() bool {
	return k == KindNamespace || k == KindClass
}

// ParseKind converts a kind name into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	switch s {
	case "enum":
		return KindEnumeration, nil
	case "method", "member_function":
		return KindMemberFunction, nil
	case "struct", "union":
		return KindClass, nil
	}
	return "", fmt.Errorf("unknown declaration kind %q", s)
}

// Access is the C++ access specifier of a class member.
type Access string

const (
	AccessNone      Access = ""
	AccessPublic    Access = "public"
	AccessProtected Access = "protected"
	AccessPrivate   Access = "private"
)

// ClassKey distinguishes class, struct and union declarations.
type ClassKey string

const (
	ClassKeyClass  ClassKey = "class"
	ClassKeyStruct ClassKey = "struct"
	ClassKeyUnion  ClassKey = "union"
)

// Location is the source position of a declaration.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"` // 1-indexed
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Param is one function parameter.
type Param struct {
	Name    string
	Type    cpptypes.Type
	Default string
}

// Signature is the callable payload of functions, member functions, constructors
// and destructors. Return is nil for constructors and destructors.
type Signature struct {
	Return      cpptypes.Type
	Params      []Param
	Static      bool
	Const       bool
	Virtual     bool
	PureVirtual bool
}

// ParamTypes returns the parameter types in order.
func (s *Signature) ParamTypes() []cpptypes.Type {
	types := make([]cpptypes.Type, len(s.Params))
	for i, p := range s.Params {
		types[i] = p.Type
	}
	return types
}

// VariableInfo is the payload of variables and data members.
type VariableInfo struct {
	Type    cpptypes.Type
	Mutable bool
	Static  bool
	Bits    int // bit-field width, 0 when not a bit-field
	Init    string
}

// Enumerator is one (name, value) pair of an enumeration.
type Enumerator struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// Comment is the documentation recovered for a declaration. Text holds the raw
// comment lines in source order, markers included.
type Comment struct {
	Text      []string
	File      string
	BeginLine int
	EndLine   int
}
