package query

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/cxxscope/internal/decls"
)

// Filter is the flat form of a Criteria used by the command line and the MCP
// tools. Empty fields are unset.
type Filter struct {
	// Kind is "declaration" (or empty), "calldef", or a declaration kind such as
	// "variable", "class" or "member function".
	Kind          string   `json:"kind,omitempty"`
	Name          string   `json:"name,omitempty"`
	QualifiedName string   `json:"qualified_name,omitempty"`
	ReturnType    string   `json:"return_type,omitempty"`
	ParamTypes    []string `json:"param_types,omitempty"`
	NoParams      bool     `json:"no_params,omitempty"` // match callables without parameters
	Type          string   `json:"type,omitempty"`
	Header        string   `json:"header,omitempty"`
}

var filterKinds = map[string]func(...Option) *Criteria{
	"":            Declaration,
	"declaration": Declaration,
	"any":         Declaration,
	"calldef":     Calldef,
	"variable":    Variable,
	"namespace":   Namespace,
	"class":       Class,
	"enumeration": Enumeration,
	"typedef":     Typedef,
}

// Criteria converts f. Type spellings are not parsed until evaluation.
func (f Filter) Criteria() (*Criteria, error) {
	var opts []Option
	if f.Name != "" {
		opts = append(opts, WithName(f.Name))
	}
	if f.QualifiedName != "" {
		opts = append(opts, WithQualifiedName(f.QualifiedName))
	}
	if f.ReturnType != "" {
		opts = append(opts, WithReturnTypeName(f.ReturnType))
	}
	if f.NoParams && len(f.ParamTypes) > 0 {
		return nil, &InvalidCriteriaError{
			Criteria: fmt.Sprintf("param types (%s)", strings.Join(f.ParamTypes, ", ")),
			Err:      fmt.Errorf("no_params conflicts with param_types"),
		}
	}
	if f.NoParams || len(f.ParamTypes) > 0 {
		opts = append(opts, WithParameterTypeNames(f.ParamTypes...))
	}
	if f.Type != "" {
		opts = append(opts, WithTypeName(f.Type))
	}
	if f.Header != "" {
		opts = append(opts, WithHeader(f.Header))
	}

	kind := strings.ToLower(strings.TrimSpace(f.Kind))
	if ctor, ok := filterKinds[kind]; ok {
		return ctor(opts...), nil
	}
	k, err := decls.ParseKind(kind)
	if err != nil {
		return nil, &InvalidCriteriaError{Criteria: "kind " + f.Kind, Err: err}
	}
	return Declaration(append([]Option{WithKinds(k)}, opts...)...), nil
}
