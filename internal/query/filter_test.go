package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Filter:
// - Each field maps onto the matching option and finds the same declarations
// - Kind accepts constructor names, declaration kinds and their aliases
// - NoParams selects parameterless callables and conflicts with ParamTypes
// - Unknown kinds fail as InvalidCriteriaError

func TestFilter_Criteria(t *testing.T) {
	t.Parallel()

	root := exampleTree(t)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"return type", Filter{Kind: "calldef", ReturnType: "double"}, []string{"ns::func2", "ns::func3"}},
		{"name", Filter{Name: "func1"}, []string{"ns::func1"}},
		{"qualified name", Filter{QualifiedName: "::ns::a"}, []string{"ns::a"}},
		{"param types", Filter{ParamTypes: []string{"double"}}, []string{"ns::func2", "ns::func3"}},
		{"variable type", Filter{Kind: "variable", Type: "int"}, []string{"ns::a", "ns::b", "other::Box::a"}},
		{"declaration kind", Filter{Kind: "function", Name: "func3"}, []string{"ns::func3"}},
		{"kind alias", Filter{Kind: "Namespace", Name: "ns"}, []string{"ns"}},
		{"header", Filter{Kind: "variable", Header: "example.hpp"}, []string{"ns::a", "ns::b", "ns::c"}},
		{"header glob", Filter{Kind: "member function", Header: "/src/*.hpp"}, []string{"other::Box::width", "other::Box::resize"}},
		{"no params", Filter{Kind: "calldef", NoParams: true}, []string{"other::Box::width"}},
		{"combined", Filter{Kind: "calldef", Name: "resize", ParamTypes: []string{"int", "other::Box const &"}}, []string{"other::Box::resize"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := tt.filter.Criteria()
			require.NoError(t, err)
			found, err := Find(c, root)
			require.NoError(t, err)

			assert.Equal(t, tt.want, names(found))
		})
	}
}

func TestFilter_Errors(t *testing.T) {
	t.Parallel()

	_, err := Filter{Kind: "module"}.Criteria()
	assert.ErrorIs(t, err, ErrInvalidCriteria)

	_, err = Filter{NoParams: true, ParamTypes: []string{"int"}}.Criteria()
	assert.ErrorIs(t, err, ErrInvalidCriteria)

	c, err := Filter{Kind: "calldef", NoParams: true}.Criteria()
	require.NoError(t, err)
	found, err := Find(c, exampleTree(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"other::Box::width"}, names(found))
}
