package decls

// Summary is the JSON view of a declaration served by the command line and the
// MCP tools.
type Summary struct {
	ID            string       `json:"id"`
	Kind          Kind         `json:"kind"`
	Name          string       `json:"name"`
	QualifiedName string       `json:"qualified_name"`
	Display       string       `json:"display"`
	Access        Access       `json:"access,omitempty"`
	Type          string       `json:"type,omitempty"`
	File          string       `json:"file,omitempty"`
	Line          int          `json:"line,omitempty"`
	Artificial    bool         `json:"artificial,omitempty"`
	Enumerators   []Enumerator `json:"enumerators,omitempty"`
	Comment       []string     `json:"comment,omitempty"`
	Children      int          `json:"children,omitempty"`
}

// Summarize returns the summary of d.
func Summarize(d *Declaration) Summary {
	s := Summary{
		ID:            d.ID,
		Kind:          d.Kind,
		Name:          d.Name,
		QualifiedName: d.QualifiedName(),
		Display:       d.String(),
		Access:        d.Access,
		Artificial:    d.Artificial,
		Enumerators:   d.Enumerators,
		Children:      len(d.children),
	}
	if t := d.Type(); t != nil {
		s.Type = t.String()
	}
	if d.Location != nil {
		s.File = d.Location.File
		s.Line = d.Location.Line
	}
	if c := d.Comment(); c != nil {
		s.Comment = c.Text
	}
	return s
}

// SummarizeAll summarizes ds in order.
func SummarizeAll(ds []*Declaration) []Summary {
	out := make([]Summary, len(ds))
	for i, d := range ds {
		out[i] = Summarize(d)
	}
	return out
}
