package decls

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a named lookup found no matching child.
	ErrNotFound = errors.New("declaration not found")

	// ErrAmbiguous indicates a named lookup expected one child and found several.
	ErrAmbiguous = errors.New("ambiguous declaration")

	// ErrInvalidTree indicates the builder was handed records that do not form a tree.
	ErrInvalidTree = errors.New("invalid declaration records")
)

// NotFoundError is returned by single-result lookups that match nothing.
type NotFoundError struct {
	Scope string
	Kind  Kind
	Name  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found in %s", e.Kind, e.Name, e.Scope)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// AmbiguityError is returned by single-result lookups that match several children.
type AmbiguityError struct {
	Scope string
	Kind  Kind
	Name  string
	Count int
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("%d declarations of %s %q in %s", e.Count, e.Kind, e.Name, e.Scope)
}

func (e *AmbiguityError) Unwrap() error { return ErrAmbiguous }
