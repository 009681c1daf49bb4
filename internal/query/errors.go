package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mvp-joe/cxxscope/internal/decls"
)

// maxRepresentatives bounds the matches carried by a MultipleMatchesError.
const maxRepresentatives = 5

var (
	ErrInvalidCriteria = errors.New("invalid criteria")
	ErrNoMatch         = errors.New("no declaration matches")
	ErrMultipleMatches = errors.New("multiple declarations match")
)

// InvalidCriteriaError reports criteria that cannot be evaluated, such as a type
// spelling that does not parse. Err is the underlying cause.
type InvalidCriteriaError struct {
	Criteria string
	Err      error
}

func (e *InvalidCriteriaError) Error() string {
	return fmt.Sprintf("invalid criteria %s: %v", e.Criteria, e.Err)
}

func (e *InvalidCriteriaError) Unwrap() []error { return []error{ErrInvalidCriteria, e.Err} }

// NoMatchError is returned by GetSingle when nothing matches.
type NoMatchError struct {
	Criteria string
	Scope    string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no declaration in %s matches %s", e.Scope, e.Criteria)
}

func (e *NoMatchError) Unwrap() error { return ErrNoMatch }

// MultipleMatchesError is returned by GetSingle when more than one declaration
// matches. Matches holds the first few, in tree order.
type MultipleMatchesError struct {
	Criteria string
	Scope    string
	Count    int
	Matches  []*decls.Declaration
}

func (e *MultipleMatchesError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d declarations in %s match %s", e.Count, e.Scope, e.Criteria)
	for _, d := range e.Matches {
		b.WriteString("\n  ")
		b.WriteString(d.String())
	}
	if e.Count > len(e.Matches) {
		fmt.Fprintf(&b, "\n  ... and %d more", e.Count-len(e.Matches))
	}
	return b.String()
}

func (e *MultipleMatchesError) Unwrap() error { return ErrMultipleMatches }
