package castxml

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// element is one child of the <CastXML> document. CastXML uses a flat list of
// elements that reference each other by id, so they are decoded generically and
// interpreted by the reader.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []element  `xml:",any"`

	attrs map[string]string
}

type document struct {
	XMLName  xml.Name  `xml:"CastXML"`
	Format   string    `xml:"format,attr"`
	Elements []element `xml:",any"`
}

func (e *element) index() {
	e.attrs = make(map[string]string, len(e.Attrs))
	for _, a := range e.Attrs {
		e.attrs[a.Name.Local] = a.Value
	}
	for i := range e.Children {
		e.Children[i].index()
	}
}

func (e *element) kind() string { return e.XMLName.Local }

func (e *element) attr(name string) string { return e.attrs[name] }

func (e *element) has(name string) bool {
	_, ok := e.attrs[name]
	return ok
}

func (e *element) flag(name string) bool {
	return e.attrs[name] == "1"
}

func (e *element) intAttr(name string) (int, bool) {
	v, ok := e.attrs[name]
	if !ok || v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimRight(v, "uUlL"))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (e *element) members() []string {
	return strings.Fields(e.attrs["members"])
}
