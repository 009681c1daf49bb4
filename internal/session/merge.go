package session

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/cxxscope/internal/castxml"
	"github.com/mvp-joe/cxxscope/internal/comments"
	"github.com/mvp-joe/cxxscope/internal/cpptypes"
	"github.com/mvp-joe/cxxscope/internal/decls"
)

// Merge combines dumps of several translation units into one record set.
//
// Every dump has its own global namespace and id space. The first dump's ids are
// kept; later dumps get a "tuN:" prefix. Namespaces with the same qualified name
// are merged, and a declaration already contributed by an earlier dump (same
// parent, kind, name, location and parameter types) is dropped, so a header
// included by several inputs appears once. Declared type ids are remapped to the
// surviving records.
func Merge(dumps ...*castxml.Dump) ([]decls.Record, []comments.Record) {
	m := &merger{identities: make(map[string]string)}
	var recs []comments.Record
	seen := make(map[string]bool)

	for i, d := range dumps {
		if d == nil {
			continue
		}
		prefix := ""
		if i > 0 {
			prefix = fmt.Sprintf("tu%d:", i)
		}
		m.add(d.Records, prefix)

		for _, c := range d.Comments {
			key := fmt.Sprintf("%s:%d:%d", c.File, c.Begin, c.End)
			if seen[key] {
				continue
			}
			seen[key] = true
			recs = append(recs, c)
		}
	}
	return m.records, recs
}

type merger struct {
	records    []decls.Record
	rootID     string
	identities map[string]string // identity -> merged id
}

func (m *merger) add(records []decls.Record, prefix string) {
	ids := make(map[string]string, len(records))
	start := len(m.records)

	for _, r := range records {
		if r.Parent == "" {
			if m.rootID == "" {
				m.rootID = prefix + r.ID
				ids[r.ID] = m.rootID
				r.ID = m.rootID
				m.records = append(m.records, r)
			} else {
				ids[r.ID] = m.rootID
			}
			continue
		}

		parent, ok := ids[r.Parent]
		if !ok {
			parent = prefix + r.Parent
		}
		key := identity(&r, parent)
		if existing, ok := m.identities[key]; ok {
			ids[r.ID] = existing
			continue
		}

		id := prefix + r.ID
		m.identities[key] = id
		ids[r.ID] = id
		r.ID = id
		r.Parent = parent
		m.records = append(m.records, r)
	}

	remap := func(t cpptypes.Type) cpptypes.Type {
		if t == nil {
			return nil
		}
		return cpptypes.MapDeclared(t, func(d cpptypes.Declared) cpptypes.Declared {
			if d.ID == "" {
				return d
			}
			if id, ok := ids[d.ID]; ok {
				d.ID = id
			} else {
				d.ID = prefix + d.ID
			}
			return d
		})
	}

	for i := start; i < len(m.records); i++ {
		r := &m.records[i]
		if r.Signature != nil {
			sig := *r.Signature
			sig.Return = remap(sig.Return)
			sig.Params = append([]decls.Param(nil), sig.Params...)
			for j := range sig.Params {
				sig.Params[j].Type = remap(sig.Params[j].Type)
			}
			r.Signature = &sig
		}
		if r.Var != nil {
			v := *r.Var
			v.Type = remap(v.Type)
			r.Var = &v
		}
		r.Aliased = remap(r.Aliased)
	}
}

// identity returns the key under which two records from different dumps are the
// same declaration.
func identity(r *decls.Record, parent string) string {
	var b strings.Builder
	b.WriteString(parent)
	b.WriteString("|")
	b.WriteString(string(r.Kind))
	b.WriteString("|")
	b.WriteString(r.Name)
	if r.Kind == decls.KindNamespace && r.Name != "" {
		return b.String()
	}
	if r.Location != nil {
		b.WriteString("|" + r.Location.String())
	}
	if r.Signature != nil {
		for _, p := range r.Signature.Params {
			b.WriteString("|" + cpptypes.Key(p.Type))
		}
		if r.Signature.Const {
			b.WriteString("|const")
		}
	}
	return b.String()
}
