package query

import (
	"github.com/mvp-joe/cxxscope/internal/cpptypes"
	"github.com/mvp-joe/cxxscope/internal/decls"
)

// Find returns every declaration under root, root included, that matches c, in
// pre-order. A nil c matches everything.
func Find(c *Criteria, root *decls.Declaration) ([]*decls.Declaration, error) {
	return find(c, root, cpptypes.FromName)
}

// GetSingle returns the only declaration under root that matches c. It fails with
// a *NoMatchError or a *MultipleMatchesError otherwise.
func GetSingle(c *Criteria, root *decls.Declaration) (*decls.Declaration, error) {
	return getSingle(c, root, cpptypes.FromName)
}

func find(c *Criteria, root *decls.Declaration, parse parseFunc) ([]*decls.Declaration, error) {
	if c == nil {
		c = Declaration()
	}
	p, err := c.compile(parse)
	if err != nil {
		return nil, err
	}

	var matches []*decls.Declaration
	root.Walk(func(d *decls.Declaration) bool {
		if p.match(d) {
			matches = append(matches, d)
		}
		return true
	})
	return matches, nil
}

func getSingle(c *Criteria, root *decls.Declaration, parse parseFunc) (*decls.Declaration, error) {
	if c == nil {
		c = Declaration()
	}
	matches, err := find(c, root, parse)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, &NoMatchError{Criteria: c.String(), Scope: root.QualifiedName()}
	case 1:
		return matches[0], nil
	}
	reps := matches
	if len(reps) > maxRepresentatives {
		reps = reps[:maxRepresentatives]
	}
	return nil, &MultipleMatchesError{
		Criteria: c.String(),
		Scope:    root.QualifiedName(),
		Count:    len(matches),
		Matches:  append([]*decls.Declaration(nil), reps...),
	}
}
