// Package castxml reads CastXML dumps into declaration and comment records and
// runs the castxml binary to produce them.
package castxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/mvp-joe/cxxscope/internal/comments"
	"github.com/mvp-joe/cxxscope/internal/cpptypes"
	"github.com/mvp-joe/cxxscope/internal/decls"
)

// BuiltinFile is the pseudo file CastXML uses for compiler builtins.
const BuiltinFile = "<builtin>"

var (
	// ErrMalformed indicates the document is not a usable CastXML dump.
	ErrMalformed = errors.New("malformed castxml document")
)

// Dump is the decoded content of one CastXML document.
type Dump struct {
	Format   string
	Records  []decls.Record
	Comments []comments.Record
	Files    []string
}

// SourceFunc loads the source of a file referenced by the dump, used to recover
// comment text.
type SourceFunc func(path string) ([]byte, error)

// ReadOption configures Read.
type ReadOption func(*readOptions)

type readOptions struct {
	source   SourceFunc
	builtins bool
	logger   *slog.Logger
}

// WithSource sets how referenced source files are loaded. The default reads them
// from disk. A nil func disables comment recovery.
func WithSource(fn SourceFunc) ReadOption {
	return func(o *readOptions) { o.source = fn }
}

// WithBuiltins keeps declarations located in BuiltinFile, which are dropped by
// default.
func WithBuiltins() ReadOption {
	return func(o *readOptions) { o.builtins = true }
}

// WithLogger sets the reader's logger.
func WithLogger(l *slog.Logger) ReadOption {
	return func(o *readOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// ReadFile reads the CastXML document at path.
func ReadFile(path string, opts ...ReadOption) (*Dump, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	dump, err := Read(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return dump, nil
}

// Read decodes a CastXML document. Declaration records are emitted in pre-order
// from the global namespace, children in the order of their parent's members
// list, which is source order.
func Read(r io.Reader, opts ...ReadOption) (*Dump, error) {
	o := readOptions{source: os.ReadFile, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	rd := &reader{
		opts:  o,
		byID:  make(map[string]*element, len(doc.Elements)),
		files: make(map[string]string),
		types: make(map[string]cpptypes.Type),
		names: make(map[string]string),
	}
	var root *element
	for i := range doc.Elements {
		e := &doc.Elements[i]
		e.index()
		if id := e.attr("id"); id != "" {
			rd.byID[id] = e
		}
		switch e.kind() {
		case "File":
			rd.files[e.attr("id")] = e.attr("name")
			rd.fileOrder = append(rd.fileOrder, e.attr("name"))
		case "Namespace":
			if !e.has("context") {
				if root != nil {
					return nil, fmt.Errorf("%w: more than one global namespace", ErrMalformed)
				}
				root = e
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no global namespace", ErrMalformed)
	}

	dump := &Dump{Format: doc.Format, Files: rd.fileOrder}
	rd.emit(root, "", &dump.Records)

	for i := range doc.Elements {
		e := &doc.Elements[i]
		if e.kind() != "Comment" {
			continue
		}
		rec, ok := rd.comment(e)
		if ok {
			dump.Comments = append(dump.Comments, rec)
		}
	}

	o.logger.Debug("castxml document read",
		"format", doc.Format,
		"elements", len(doc.Elements),
		"records", len(dump.Records),
		"comments", len(dump.Comments))
	return dump, nil
}

type reader struct {
	opts      readOptions
	byID      map[string]*element
	files     map[string]string
	fileOrder []string
	types     map[string]cpptypes.Type
	names     map[string]string
	sources   map[string][]byte
}

var classKeys = map[string]decls.ClassKey{
	"Class":  decls.ClassKeyClass,
	"Struct": decls.ClassKeyStruct,
	"Union":  decls.ClassKeyUnion,
}

// emit appends the record for e and, recursively, its members.
func (rd *reader) emit(e *element, parent string, out *[]decls.Record) {
	rec, ok := rd.record(e, parent)
	if !ok {
		return
	}
	*out = append(*out, rec)
	if !rec.Kind.Container() {
		return
	}
	for _, id := range e.members() {
		if m, ok := rd.byID[id]; ok {
			rd.emit(m, rec.ID, out)
		}
	}
}

func (rd *reader) record(e *element, parent string) (decls.Record, bool) {
	rec := decls.Record{
		ID:         e.attr("id"),
		Name:       e.attr("name"),
		Parent:     parent,
		Location:   rd.location(e),
		Artificial: e.flag("artificial"),
		Access:     decls.Access(e.attr("access")),
	}
	if parent != "" && !rd.opts.builtins && rd.isBuiltin(e) {
		return rec, false
	}

	switch k := e.kind(); k {
	case "Namespace":
		rec.Kind = decls.KindNamespace
		if parent == "" {
			rec.Name = decls.GlobalName
		}
	case "Class", "Struct", "Union":
		rec.Kind = decls.KindClass
		rec.ClassKey = classKeys[k]
	case "Enumeration":
		rec.Kind = decls.KindEnumeration
		for _, v := range e.Children {
			if v.kind() != "EnumValue" {
				continue
			}
			n, err := strconv.ParseInt(v.attr("init"), 10, 64)
			if err != nil {
				rd.opts.logger.Debug("skipping enumerator with unparsable value",
					"enumeration", rec.Name, "enumerator", v.attr("name"), "init", v.attr("init"))
				continue
			}
			rec.Enumerators = append(rec.Enumerators, decls.Enumerator{Name: v.attr("name"), Value: n})
		}
	case "Function", "OperatorFunction":
		rec.Kind = decls.KindFunction
		rec.Signature = rd.signature(e, true)
	case "Method", "OperatorMethod", "Converter":
		rec.Kind = decls.KindMemberFunction
		rec.Signature = rd.signature(e, true)
	case "Constructor":
		rec.Kind = decls.KindConstructor
		rec.Signature = rd.signature(e, false)
	case "Destructor":
		rec.Kind = decls.KindDestructor
		rec.Signature = rd.signature(e, false)
		if !strings.HasPrefix(rec.Name, "~") {
			rec.Name = "~" + rec.Name
		}
	case "Field", "Variable":
		rec.Kind = decls.KindVariable
		bits, _ := e.intAttr("bits")
		rec.Var = &decls.VariableInfo{
			Type:    rd.typeOf(e.attr("type")),
			Mutable: e.flag("mutable"),
			Static:  (k == "Variable" && rd.isClass(parent)) || e.flag("static"),
			Bits:    bits,
			Init:    e.attr("init"),
		}
	case "Typedef":
		rec.Kind = decls.KindTypedef
		rec.Aliased = rd.typeOf(e.attr("type"))
	default:
		return rec, false
	}

	switch e.kind() {
	case "OperatorFunction", "OperatorMethod":
		rec.Name = "operator" + rec.Name
	case "Converter":
		if rec.Signature.Return != nil {
			rec.Name = "operator " + rec.Signature.Return.String()
		}
	}
	return rec, true
}

func (rd *reader) isClass(id string) bool {
	e, ok := rd.byID[id]
	if !ok {
		return false
	}
	_, isClass := classKeys[e.kind()]
	return isClass
}

func (rd *reader) signature(e *element, returns bool) *decls.Signature {
	sig := &decls.Signature{
		Static:      e.flag("static"),
		Const:       e.flag("const"),
		Virtual:     e.flag("virtual"),
		PureVirtual: e.flag("pure_virtual"),
	}
	if returns {
		sig.Return = rd.typeOf(e.attr("returns"))
	}
	for _, a := range e.Children {
		if a.kind() != "Argument" {
			continue
		}
		sig.Params = append(sig.Params, decls.Param{
			Name:    a.attr("name"),
			Type:    rd.typeOf(a.attr("type")),
			Default: a.attr("default"),
		})
	}
	return sig
}

// position decodes location="f1:12", falling back to the file and line attributes.
func position(e *element) (fileID string, line int) {
	fileID = e.attr("file")
	if loc := e.attr("location"); loc != "" {
		if i := strings.LastIndexByte(loc, ':'); i > 0 {
			fileID = loc[:i]
			line, _ = strconv.Atoi(loc[i+1:])
		}
	}
	if line == 0 {
		line, _ = e.intAttr("line")
	}
	return fileID, line
}

// isBuiltin reports declarations castxml places in the <builtin> pseudo file.
// Their line is 0, so they never carry a Location.
func (rd *reader) isBuiltin(e *element) bool {
	fileID, _ := position(e)
	return fileID != "" && rd.files[fileID] == BuiltinFile
}

func (rd *reader) location(e *element) *decls.Location {
	fileID, line := position(e)
	if fileID == "" || line == 0 {
		return nil
	}
	name, ok := rd.files[fileID]
	if !ok {
		name = fileID
	}
	return &decls.Location{File: name, Line: line}
}

// qualifiedName computes the qualified name of the declaration element id from its
// context chain.
func (rd *reader) qualifiedName(id string) string {
	if n, ok := rd.names[id]; ok {
		return n
	}
	e, ok := rd.byID[id]
	if !ok {
		return ""
	}
	name := e.attr("name")
	if ctx := e.attr("context"); ctx != "" {
		if prefix := rd.qualifiedName(ctx); prefix != "" && prefix != decls.GlobalName {
			if name == "" {
				name = prefix
			} else {
				name = prefix + "::" + name
			}
		}
	} else {
		name = decls.GlobalName
	}
	rd.names[id] = name
	return name
}

// typeOf converts the type element id into a Type. Declarations used as types
// become Declared with their id, which the builder resolves.
func (rd *reader) typeOf(id string) cpptypes.Type {
	if id == "" {
		return nil
	}
	if t, ok := rd.types[id]; ok {
		return t
	}
	// Guard against self-referencing type chains while converting.
	rd.types[id] = cpptypes.Declared{ID: id, Name: id}

	var t cpptypes.Type
	e, ok := rd.byID[id]
	switch {
	case !ok:
		t = cpptypes.Declared{ID: id, Name: id}
	case e.kind() == "FundamentalType":
		t = fundamental(e.attr("name"))
	case e.kind() == "PointerType":
		t = cpptypes.PointerTo(rd.typeOf(e.attr("type")))
	case e.kind() == "ReferenceType":
		t = cpptypes.ReferenceTo(rd.typeOf(e.attr("type")))
	case e.kind() == "RValueReferenceType":
		t = cpptypes.RValueReferenceTo(rd.typeOf(e.attr("type")))
	case e.kind() == "CvQualifiedType":
		t = cpptypes.Qualified(rd.typeOf(e.attr("type")), e.flag("const"), e.flag("volatile"))
	case e.kind() == "ArrayType":
		t = cpptypes.ArrayOf(rd.typeOf(e.attr("type")), arraySize(e))
	case e.kind() == "ElaboratedType":
		t = rd.typeOf(e.attr("type"))
	case e.kind() == "FunctionType":
		var params []cpptypes.Type
		for _, a := range e.Children {
			if a.kind() == "Argument" {
				params = append(params, rd.typeOf(a.attr("type")))
			}
		}
		t = cpptypes.FunctionOf(rd.typeOf(e.attr("returns")), params...)
	default:
		t = cpptypes.Declared{ID: id, Name: rd.qualifiedName(id)}
	}
	rd.types[id] = t
	return t
}

func fundamental(name string) cpptypes.Type {
	if t, err := cpptypes.FundamentalOf(name); err == nil {
		return t
	}
	return cpptypes.Fundamental{Name: name}
}

// arraySize derives the element count from the min/max attributes. An unbounded
// array has an empty max, or -1 after parsing.
func arraySize(e *element) int {
	lo, _ := e.intAttr("min")
	hi, ok := e.intAttr("max")
	if !ok || hi < lo {
		return -1
	}
	return hi - lo + 1
}

// comment turns a <Comment> element into a record, reading the referenced file to
// recover the text. Elements whose source cannot be read are skipped.
func (rd *reader) comment(e *element) (comments.Record, bool) {
	if rd.opts.source == nil {
		return comments.Record{}, false
	}
	file, ok := rd.files[e.attr("file")]
	if !ok {
		return comments.Record{}, false
	}
	src, err := rd.source(file)
	if err != nil {
		rd.opts.logger.Debug("comment source unavailable", "file", file, "error", err)
		return comments.Record{}, false
	}

	if start, ok := e.intAttr("begin_offset"); ok {
		end, ok := e.intAttr("end_offset")
		if ok && start >= 0 && end <= len(src) && start < end {
			return comments.NewRecord(file, src, start, end), true
		}
	}

	begin, ok := e.intAttr("begin_line")
	if !ok {
		begin, ok = e.intAttr("line")
	}
	if !ok {
		return comments.Record{}, false
	}
	end, ok := e.intAttr("end_line")
	if !ok {
		end = begin
	}
	lines := strings.Split(string(src), "\n")
	if begin < 1 || end < begin || end > len(lines) {
		return comments.Record{}, false
	}
	return comments.FromLines(file, begin, lines[begin-1:end], comments.FollowingLine(src, end)), true
}

func (rd *reader) source(file string) ([]byte, error) {
	if rd.sources == nil {
		rd.sources = make(map[string][]byte)
	}
	if src, ok := rd.sources[file]; ok {
		return src, nil
	}
	src, err := rd.opts.source(file)
	if err != nil {
		return nil, err
	}
	rd.sources[file] = src
	return src, nil
}
