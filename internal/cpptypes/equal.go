package cpptypes

import (
	"strconv"
	"strings"
)

// Fundamental type constructors.
func Int() Type { return Fundamental{Name: "int"} }
func UnsignedInt() Type { return Fundamental{Name: "unsigned int"} }
func LongInt() Type { return Fundamental{Name: "long int"} }
func LongUnsignedInt() Type { return Fundamental{Name: "long unsigned int"} }
func Char() Type { return Fundamental{Name: "char"} }
func Bool() Type { return Fundamental{Name: "bool"} }
func Float() Type { return Fundamental{Name: "float"} }
func Double() Type { return Fundamental{Name: "double"} }
func Void() Type { return Fundamental{Name: "void"} }

// FundamentalOf returns the fundamental type with the given spelling, canonicalized
// ("unsigned long" becomes "long unsigned int"). It fails with a *ParseError when the
// spelling is not a fundamental type.
func FundamentalOf(spelling string) (Type, error) {
	toks, err := tokenize(spelling)
	if err != nil {
		return nil, err
	}
	words := make([]string, 0, len(toks))
	for _, tok := range toks {
		if tok.kind != tokWord || !fundamentalWords[tok.text] {
			return nil, &ParseError{Spelling: spelling, Reason: "not a fundamental type"}
		}
		words = append(words, tok.text)
	}
	name, err := canonicalFundamental(words)
	if err != nil {
		return nil, &ParseError{Spelling: spelling, Reason: err.Error()}
	}
	return Fundamental{Name: name}, nil
}

// PointerTo returns a pointer to t.
func PointerTo(t Type) Type { return Pointer{Elem: t} }

// ReferenceTo returns an lvalue reference to t.
func ReferenceTo(t Type) Type { return Reference{Elem: t} }

// RValueReferenceTo returns an rvalue reference to t.
func RValueReferenceTo(t Type) Type { return Reference{Elem: t, RValue: true} }

// Const returns t qualified with const.
func Const(t Type) Type { return Qualified(t, true, false) }

// Volatile returns t qualified with volatile.
func Volatile(t Type) Type { return Qualified(t, false, true) }

// Qualified adds cv-qualifiers to t. Nested qualifiers collapse into a single CV,
// and qualifiers on an array apply to its elements.
func Qualified(t Type, isConst, isVolatile bool) Type {
	if !isConst && !isVolatile {
		return t
	}
	switch v := t.(type) {
	case CV:
		return CV{Const: v.Const || isConst, Volatile: v.Volatile || isVolatile, Base: v.Base}
	case Array:
		return Array{Elem: Qualified(v.Elem, isConst, isVolatile), Size: v.Size}
	}
	return CV{Const: isConst, Volatile: isVolatile, Base: t}
}

// ArrayOf returns an array of size elements of t; a negative size means unknown.
func ArrayOf(t Type, size int) Type {
	if size < 0 {
		size = -1
	}
	return Array{Elem: t, Size: size}
}

// DeclaredAs returns a reference to the named declaration. ref may be nil.
func DeclaredAs(name string, ref DeclRef) Type {
	return Declared{Name: name, Ref: ref}
}

// FunctionOf returns a function type.
func FunctionOf(ret Type, params ...Type) Type {
	return Function{Return: ret, Params: append([]Type(nil), params...)}
}

// Equal reports whether a and b denote the same type. Two nil types are equal.
// CV values built as struct literals compare in their canonical form.
func Equal(a, b Type) bool {
	return equal(canonical(a), canonical(b))
}

func equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Fundamental:
		y, ok := b.(Fundamental)
		return ok && x.Name == y.Name
	case Pointer:
		y, ok := b.(Pointer)
		return ok && equal(x.Elem, y.Elem)
	case Reference:
		y, ok := b.(Reference)
		return ok && x.RValue == y.RValue && equal(x.Elem, y.Elem)
	case CV:
		y, ok := b.(CV)
		return ok && x.Const == y.Const && x.Volatile == y.Volatile && equal(x.Base, y.Base)
	case Array:
		y, ok := b.(Array)
		return ok && x.Size == y.Size && equal(x.Elem, y.Elem)
	case Declared:
		y, ok := b.(Declared)
		return ok && x.QualifiedName() == y.QualifiedName()
	case Function:
		y, ok := b.(Function)
		if !ok || len(x.Params) != len(y.Params) || !equal(x.Return, y.Return) {
			return false
		}
		for i := range x.Params {
			if !equal(x.Params[i], y.Params[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Key returns a canonical string for t such that Equal(a, b) holds exactly when
// Key(a) == Key(b). It is suitable as a map key, not for display: names are
// length-prefixed and every variant is tagged.
func Key(t Type) string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	writeKey(&b, canonical(t))
	return b.String()
}

func writeKey(b *strings.Builder, t Type) {
	switch v := t.(type) {
	case nil:
		b.WriteByte('-')
	case Fundamental:
		writeName(b, 'F', v.Name)
	case Declared:
		writeName(b, 'D', v.QualifiedName())
	case Pointer:
		b.WriteByte('P')
		writeKey(b, v.Elem)
	case Reference:
		if v.RValue {
			b.WriteString("RR")
		} else {
			b.WriteByte('R')
		}
		writeKey(b, v.Elem)
	case CV:
		b.WriteByte('Q')
		if v.Const {
			b.WriteByte('c')
		}
		if v.Volatile {
			b.WriteByte('v')
		}
		b.WriteByte('.')
		writeKey(b, v.Base)
	case Array:
		b.WriteString("A" + strconv.Itoa(v.Size) + ".")
		writeKey(b, v.Elem)
	case Function:
		b.WriteString("X" + strconv.Itoa(len(v.Params)) + ".")
		writeKey(b, v.Return)
		for _, p := range v.Params {
			writeKey(b, p)
		}
	}
}

func writeName(b *strings.Builder, tag byte, name string) {
	b.WriteByte(tag)
	b.WriteString(strconv.Itoa(len(name)))
	b.WriteByte(':')
	b.WriteString(name)
}

// canonical rebuilds t through the constructors, so a CV written as a literal
// without flags, or wrapping another CV or an array, takes its canonical shape.
func canonical(t Type) Type {
	switch v := t.(type) {
	case Pointer:
		return Pointer{Elem: canonical(v.Elem)}
	case Reference:
		return Reference{Elem: canonical(v.Elem), RValue: v.RValue}
	case CV:
		return Qualified(canonical(v.Base), v.Const, v.Volatile)
	case Array:
		return ArrayOf(canonical(v.Elem), v.Size)
	case Function:
		params := make([]Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = canonical(p)
		}
		return Function{Return: canonical(v.Return), Params: params}
	}
	return t
}

// Resolve returns t with every Declared type's Ref filled in by lookup, keyed by
// Declared.ID. Declared types without an ID, or whose ID lookup does not know, keep
// their current Ref.
func Resolve(t Type, lookup func(id string) DeclRef) Type {
	return MapDeclared(t, func(d Declared) Declared {
		if d.ID == "" {
			return d
		}
		if ref := lookup(d.ID); ref != nil {
			d.Ref = ref
		}
		return d
	})
}

// MapDeclared returns a copy of t with every nested Declared type replaced by fn(d).
func MapDeclared(t Type, fn func(Declared) Declared) Type {
	switch v := t.(type) {
	case Pointer:
		return Pointer{Elem: MapDeclared(v.Elem, fn)}
	case Reference:
		return Reference{Elem: MapDeclared(v.Elem, fn), RValue: v.RValue}
	case CV:
		return CV{Const: v.Const, Volatile: v.Volatile, Base: MapDeclared(v.Base, fn)}
	case Array:
		return Array{Elem: MapDeclared(v.Elem, fn), Size: v.Size}
	case Function:
		params := make([]Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = MapDeclared(p, fn)
		}
		return Function{Return: MapDeclared(v.Return, fn), Params: params}
	case Declared:
		return fn(v)
	}
	return t
}

// Walk calls fn for t and every type nested in it, outermost first.
func Walk(t Type, fn func(Type)) {
	if t == nil {
		return
	}
	fn(t)
	switch v := t.(type) {
	case Pointer:
		Walk(v.Elem, fn)
	case Reference:
		Walk(v.Elem, fn)
	case CV:
		Walk(v.Base, fn)
	case Array:
		Walk(v.Elem, fn)
	case Function:
		Walk(v.Return, fn)
		for _, p := range v.Params {
			Walk(p, fn)
		}
	}
}
