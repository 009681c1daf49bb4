package decls

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/mvp-joe/cxxscope/internal/cpptypes"
)

// Record is one introspection record handed to Build. Parent is the ID of the
// enclosing record and is empty only for the global namespace. The payload fields
// follow the same rules as on Declaration.
type Record struct {
	ID         string
	Kind       Kind
	Name       string
	Parent     string
	Location   *Location
	Artificial bool
	Access     Access

	ClassKey    ClassKey
	Signature   *Signature
	Var         *VariableInfo
	Enumerators []Enumerator
	Aliased     cpptypes.Type
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report build statistics.
func WithLogger(l *slog.Logger) BuildOption {
	return func(o *buildOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Build links records into a declaration tree and returns its root.
//
// Children are attached in record order. Every structural problem (empty or
// duplicate IDs, a missing or extra root, unknown or non-container parents, parent
// cycles) is collected and returned together, wrapped in ErrInvalidTree; no partial
// tree is returned. Declared types whose ID names a record are resolved to it.
func Build(records []Record, opts ...BuildOption) (*Declaration, error) {
	options := buildOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}

	var errs *multierror.Error
	byID := make(map[string]*Declaration, len(records))
	order := make([]*Declaration, 0, len(records))
	parents := make(map[*Declaration]string, len(records))

	for i := range records {
		r := &records[i]
		if r.ID == "" {
			errs = multierror.Append(errs, fmt.Errorf("record %d (%s %q): empty id", i, r.Kind, r.Name))
			continue
		}
		if _, dup := byID[r.ID]; dup {
			errs = multierror.Append(errs, fmt.Errorf("record %s: duplicate id", r.ID))
			continue
		}
		d := fromRecord(r)
		byID[r.ID] = d
		order = append(order, d)
		parents[d] = r.Parent
	}

	var root *Declaration
	for _, d := range order {
		pid := parents[d]
		if pid == "" {
			if d.Kind != KindNamespace {
				errs = multierror.Append(errs, fmt.Errorf("record %s: %s without parent", d.ID, d.Kind))
				continue
			}
			if root != nil {
				errs = multierror.Append(errs, fmt.Errorf("record %s: second root namespace (first is %s)", d.ID, root.ID))
				continue
			}
			root = d
			continue
		}
		p, ok := byID[pid]
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf("record %s: unknown parent %s", d.ID, pid))
			continue
		}
		if !p.Kind.Container() {
			errs = multierror.Append(errs, fmt.Errorf("record %s: parent %s is a %s", d.ID, pid, p.Kind))
			continue
		}
		d.parent = p
	}
	if root == nil {
		errs = multierror.Append(errs, errors.New("no root namespace"))
	}

	for _, d := range order {
		if cyclic(d) {
			errs = multierror.Append(errs, fmt.Errorf("record %s: cyclic parent chain", d.ID))
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTree, err)
	}

	for _, d := range order {
		if d.parent != nil {
			d.parent.children = append(d.parent.children, d)
		}
	}

	lookup := func(id string) cpptypes.DeclRef {
		if d, ok := byID[id]; ok {
			return d
		}
		return nil
	}
	resolved := 0
	for _, d := range order {
		resolved += resolveTypes(d, lookup)
	}

	options.logger.Debug("declaration tree built",
		"declarations", len(order),
		"resolved_types", resolved)
	return root, nil
}

func fromRecord(r *Record) *Declaration {
	d := &Declaration{
		Kind:        r.Kind,
		Name:        r.Name,
		ID:          r.ID,
		Location:    r.Location,
		Artificial:  r.Artificial,
		Access:      r.Access,
		ClassKey:    r.ClassKey,
		Signature:   r.Signature,
		Var:         r.Var,
		Enumerators: r.Enumerators,
		Aliased:     r.Aliased,
	}
	if r.Signature != nil {
		sig := *r.Signature
		sig.Params = append([]Param(nil), r.Signature.Params...)
		d.Signature = &sig
	}
	if r.Var != nil {
		v := *r.Var
		d.Var = &v
	}
	return d
}

// cyclic reports whether following parent links from d revisits a node.
func cyclic(d *Declaration) bool {
	slow, fast := d, d
	for fast != nil && fast.parent != nil {
		slow = slow.parent
		fast = fast.parent.parent
		if slow == fast {
			return true
		}
	}
	return false
}

func resolveTypes(d *Declaration, lookup func(string) cpptypes.DeclRef) int {
	n := 0
	resolve := func(t cpptypes.Type) cpptypes.Type {
		if t == nil {
			return nil
		}
		out := cpptypes.Resolve(t, lookup)
		cpptypes.Walk(out, func(t cpptypes.Type) {
			if dt, ok := t.(cpptypes.Declared); ok && dt.Ref != nil {
				n++
			}
		})
		return out
	}
	if s := d.Signature; s != nil {
		s.Return = resolve(s.Return)
		for i := range s.Params {
			s.Params[i].Type = resolve(s.Params[i].Type)
		}
	}
	if d.Var != nil {
		d.Var.Type = resolve(d.Var.Type)
	}
	d.Aliased = resolve(d.Aliased)
	return n
}
