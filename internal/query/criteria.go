// Package query finds declarations by structural criteria.
//
// A Criteria is a conjunction of optional predicates. Unset predicates match
// everything, and a predicate on an attribute a declaration kind lacks (a return
// type on a variable, say) is a non-match rather than an error:
//
//	c := query.Calldef(query.WithReturnTypeName("double"))
//	funcs, err := query.Find(c, ns)
package query

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/cxxscope/internal/config"
	"github.com/mvp-joe/cxxscope/internal/cpptypes"
	"github.com/mvp-joe/cxxscope/internal/decls"
)

// typeArg is a type predicate given either as a Type or as a spelling.
type typeArg struct {
	typ      cpptypes.Type
	spelling string
}

func (a typeArg) String() string {
	if a.typ != nil {
		return a.typ.String()
	}
	return a.spelling
}

// Criteria selects declarations. Build one with Declaration, Calldef, Variable,
// Namespace, Class, Enumeration or Typedef. Criteria values are not modified by
// evaluation and may be shared between goroutines.
type Criteria struct {
	kinds     []decls.Kind
	name      *string
	qualified *string
	returns   *typeArg
	params    []typeArg
	hasParams bool
	declType  *typeArg
	header    string
}

// Option sets one predicate.
type Option func(*Criteria)

// WithName matches the exact unqualified name.
func WithName(name string) Option {
	return func(c *Criteria) { c.name = &name }
}

// WithQualifiedName matches the exact qualified name; a leading "::" is ignored.
func WithQualifiedName(name string) Option {
	return func(c *Criteria) { c.qualified = &name }
}

// WithKinds restricts the declaration kinds. Combined with a constructor that
// already restricts kinds, only kinds allowed by both remain.
func WithKinds(kinds ...decls.Kind) Option {
	return func(c *Criteria) {
		if c.kinds == nil {
			c.kinds = append([]decls.Kind{}, kinds...)
			return
		}
		var both []decls.Kind
		for _, k := range c.kinds {
			for _, want := range kinds {
				if k == want {
					both = append(both, k)
				}
			}
		}
		c.kinds = append([]decls.Kind{}, both...)
	}
}

// WithReturnType matches callables returning t.
func WithReturnType(t cpptypes.Type) Option {
	return func(c *Criteria) { c.returns = &typeArg{typ: t} }
}

// WithReturnTypeName is WithReturnType with the type given as a spelling.
func WithReturnTypeName(spelling string) Option {
	return func(c *Criteria) { c.returns = &typeArg{spelling: spelling} }
}

// WithParameterTypes matches callables whose parameter types are exactly types, in
// order. Passing no types matches callables without parameters.
func WithParameterTypes(types ...cpptypes.Type) Option {
	return func(c *Criteria) {
		c.hasParams = true
		c.params = make([]typeArg, len(types))
		for i, t := range types {
			c.params[i] = typeArg{typ: t}
		}
	}
}

// WithParameterTypeNames is WithParameterTypes with spellings.
func WithParameterTypeNames(spellings ...string) Option {
	return func(c *Criteria) {
		c.hasParams = true
		c.params = make([]typeArg, len(spellings))
		for i, s := range spellings {
			c.params[i] = typeArg{spelling: s}
		}
	}
}

// WithType matches variables of type t and typedefs aliasing t.
func WithType(t cpptypes.Type) Option {
	return func(c *Criteria) { c.declType = &typeArg{typ: t} }
}

// WithTypeName is WithType with the type given as a spelling.
func WithTypeName(spelling string) Option {
	return func(c *Criteria) { c.declType = &typeArg{spelling: spelling} }
}

// WithHeader matches declarations located in a file matching the glob pattern,
// tested against both the full path and the base name.
func WithHeader(pattern string) Option {
	return func(c *Criteria) { c.header = pattern }
}

func newCriteria(kinds []decls.Kind, opts []Option) *Criteria {
	c := &Criteria{kinds: kinds}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Declaration matches declarations of any kind.
func Declaration(opts ...Option) *Criteria {
	return newCriteria(nil, opts)
}

// Calldef matches free functions, member functions, constructors and destructors.
func Calldef(opts ...Option) *Criteria {
	return newCriteria([]decls.Kind{
		decls.KindFunction, decls.KindMemberFunction, decls.KindConstructor, decls.KindDestructor,
	}, opts)
}

// Variable matches variables and data members.
func Variable(opts ...Option) *Criteria {
	return newCriteria([]decls.Kind{decls.KindVariable}, opts)
}

// Namespace matches namespaces.
func Namespace(opts ...Option) *Criteria {
	return newCriteria([]decls.Kind{decls.KindNamespace}, opts)
}

// Class matches classes, structs and unions.
func Class(opts ...Option) *Criteria {
	return newCriteria([]decls.Kind{decls.KindClass}, opts)
}

// Enumeration matches enumerations.
func Enumeration(opts ...Option) *Criteria {
	return newCriteria([]decls.Kind{decls.KindEnumeration}, opts)
}

// Typedef matches typedefs.
func Typedef(opts ...Option) *Criteria {
	return newCriteria([]decls.Kind{decls.KindTypedef}, opts)
}

// String describes the criteria for error messages, for example
// `kind in (variable) and name == "a"`.
func (c *Criteria) String() string {
	var parts []string
	if c.kinds != nil {
		ks := make([]string, len(c.kinds))
		for i, k := range c.kinds {
			ks[i] = string(k)
		}
		parts = append(parts, "kind in ("+strings.Join(ks, ", ")+")")
	}
	if c.name != nil {
		parts = append(parts, fmt.Sprintf("name == %q", *c.name))
	}
	if c.qualified != nil {
		parts = append(parts, fmt.Sprintf("qualified name == %q", *c.qualified))
	}
	if c.returns != nil {
		parts = append(parts, fmt.Sprintf("return type == %q", c.returns))
	}
	if c.hasParams {
		ps := make([]string, len(c.params))
		for i, p := range c.params {
			ps[i] = p.String()
		}
		parts = append(parts, "parameters == ("+strings.Join(ps, ", ")+")")
	}
	if c.declType != nil {
		parts = append(parts, fmt.Sprintf("type == %q", c.declType))
	}
	if c.header != "" {
		parts = append(parts, fmt.Sprintf("header ~ %q", c.header))
	}
	if len(parts) == 0 {
		return "(any declaration)"
	}
	return strings.Join(parts, " and ")
}

// parseFunc turns a spelling into a Type.
type parseFunc func(string) (cpptypes.Type, error)

// predicate is a Criteria with every spelling parsed and the header compiled.
type predicate struct {
	kinds     map[decls.Kind]bool
	name      *string
	qualified *string
	returns   cpptypes.Type
	params    []cpptypes.Type
	hasParams bool
	declType  cpptypes.Type
	header    glob.Glob
}

func (c *Criteria) compile(parse parseFunc) (*predicate, error) {
	p := &predicate{name: c.name, hasParams: c.hasParams}
	invalid := func(err error) error {
		return &InvalidCriteriaError{Criteria: c.String(), Err: err}
	}
	resolve := func(a typeArg) (cpptypes.Type, error) {
		if a.typ != nil {
			return a.typ, nil
		}
		return parse(a.spelling)
	}

	if c.kinds != nil {
		p.kinds = make(map[decls.Kind]bool, len(c.kinds))
		for _, k := range c.kinds {
			p.kinds[k] = true
		}
	}
	if c.qualified != nil {
		q := strings.TrimPrefix(*c.qualified, decls.GlobalName)
		if q == "" {
			q = decls.GlobalName
		}
		p.qualified = &q
	}
	if c.returns != nil {
		t, err := resolve(*c.returns)
		if err != nil {
			return nil, invalid(err)
		}
		p.returns = t
	}
	for _, a := range c.params {
		t, err := resolve(a)
		if err != nil {
			return nil, invalid(err)
		}
		p.params = append(p.params, t)
	}
	if c.declType != nil {
		t, err := resolve(*c.declType)
		if err != nil {
			return nil, invalid(err)
		}
		p.declType = t
	}
	if c.header != "" {
		g, err := config.CompilePattern(c.header)
		if err != nil {
			return nil, invalid(fmt.Errorf("header pattern: %w", err))
		}
		p.header = g
	}
	return p, nil
}

func (p *predicate) match(d *decls.Declaration) bool {
	if p.kinds != nil && !p.kinds[d.Kind] {
		return false
	}
	if p.name != nil && d.Name != *p.name {
		return false
	}
	if p.qualified != nil && d.QualifiedName() != *p.qualified {
		return false
	}
	if p.returns != nil {
		if d.Signature == nil || d.Signature.Return == nil || !cpptypes.Equal(p.returns, d.Signature.Return) {
			return false
		}
	}
	if p.hasParams {
		if d.Signature == nil || len(d.Signature.Params) != len(p.params) {
			return false
		}
		for i, param := range d.Signature.Params {
			if !cpptypes.Equal(p.params[i], param.Type) {
				return false
			}
		}
	}
	if p.declType != nil {
		t := d.Type()
		if t == nil || !cpptypes.Equal(p.declType, t) {
			return false
		}
	}
	if p.header != nil {
		if d.Location == nil {
			return false
		}
		file := filepath.ToSlash(d.Location.File)
		if !p.header.Match(file) && !p.header.Match(filepath.Base(file)) {
			return false
		}
	}
	return true
}
