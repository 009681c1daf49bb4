package cpptypes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrParse is the sentinel wrapped by every *ParseError.
var ErrParse = errors.New("unrecognized type spelling")

// ParseError reports a type spelling FromName could not understand.
type ParseError struct {
	Spelling string
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse type %q: %s", e.Spelling, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }

var fundamentalWords = map[string]bool{
	"void": true, "bool": true, "char": true, "wchar_t": true,
	"char8_t": true, "char16_t": true, "char32_t": true,
	"short": true, "int": true, "long": true, "signed": true, "unsigned": true,
	"float": true, "double": true, "__int128": true,
}

// standalone fundamentals take no sign or size modifiers.
var standalone = map[string]bool{
	"void": true, "bool": true, "wchar_t": true, "char8_t": true,
	"char16_t": true, "char32_t": true, "float": true,
}

// elaborated keywords are accepted in front of a declared name and dropped.
var elaborated = map[string]bool{
	"struct": true, "class": true, "union": true, "enum": true, "typename": true,
}

type tokKind int

const (
	tokWord tokKind = iota
	tokStar
	tokAmp
	tokAmpAmp
	tokLBracket
	tokRBracket
	tokNumber
)

type token struct {
	kind tokKind
	text string
}

// FromName parses a C++ type spelling into its structural representation.
//
// Accepted spellings cover fundamentals in any word order ("unsigned long",
// "long unsigned int"), qualified declared names ("ns::Foo", "::std::vector<int>"),
// const and volatile on either side, pointers, references and arrays:
//
//	FromName("int")              // Int()
//	FromName("const int &")      // ReferenceTo(Const(Int()))
//	FromName("char const * const") // Const(PointerTo(Const(Char())))
//	FromName("double[3]")        // ArrayOf(Double(), 3)
func FromName(spelling string) (Type, error) {
	toks, err := tokenize(spelling)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, &ParseError{Spelling: spelling, Reason: "empty spelling"}
	}

	p := &typeParser{spelling: spelling, toks: toks}
	return p.parse()
}

// MustFromName is like FromName but panics on error. Intended for tests and
// package-level values.
func MustFromName(spelling string) Type {
	t, err := FromName(spelling)
	if err != nil {
		panic(err)
	}
	return t
}

type typeParser struct {
	spelling string
	toks     []token
	pos      int
}

func (p *typeParser) fail(format string, args ...any) error {
	return &ParseError{Spelling: p.spelling, Reason: fmt.Sprintf(format, args...)}
}

func (p *typeParser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *typeParser) parse() (Type, error) {
	base, err := p.parseSpecifiers()
	if err != nil {
		return nil, err
	}

	t := base
	referenced := false
	for {
		tok, ok := p.peek()
		if !ok || tok.kind == tokLBracket {
			break
		}
		p.pos++
		switch {
		case tok.kind == tokStar:
			if referenced {
				return nil, p.fail("pointer to reference")
			}
			t = PointerTo(t)
		case tok.kind == tokAmp || tok.kind == tokAmpAmp:
			if referenced {
				return nil, p.fail("reference to reference")
			}
			referenced = true
			t = Reference{Elem: t, RValue: tok.kind == tokAmpAmp}
		case tok.kind == tokWord && tok.text == "const":
			t = Const(t)
		case tok.kind == tokWord && tok.text == "volatile":
			t = Volatile(t)
		default:
			return nil, p.fail("unexpected %q", tok.text)
		}
	}

	dims, err := p.parseDimensions()
	if err != nil {
		return nil, err
	}
	if len(dims) > 0 && referenced {
		return nil, p.fail("array of references")
	}
	for i := len(dims) - 1; i >= 0; i-- {
		t = ArrayOf(t, dims[i])
	}
	return t, nil
}

// parseSpecifiers consumes the leading word sequence: cv-qualifiers plus either a
// fundamental type or a single declared name.
func (p *typeParser) parseSpecifiers() (Type, error) {
	var (
		isConst, isVolatile bool
		fundamentals        []string
		declared            string
	)
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokWord {
			break
		}
		p.pos++
		switch {
		case tok.text == "const":
			if isConst {
				return nil, p.fail("duplicate const")
			}
			isConst = true
		case tok.text == "volatile":
			if isVolatile {
				return nil, p.fail("duplicate volatile")
			}
			isVolatile = true
		case fundamentalWords[tok.text]:
			if declared != "" {
				return nil, p.fail("%q mixed with declared name %q", tok.text, declared)
			}
			fundamentals = append(fundamentals, tok.text)
		case elaborated[tok.text]:
			if declared != "" || len(fundamentals) > 0 {
				return nil, p.fail("unexpected %q", tok.text)
			}
		default:
			if declared != "" || len(fundamentals) > 0 {
				return nil, p.fail("unexpected name %q", tok.text)
			}
			declared = tok.text
		}
	}

	var base Type
	switch {
	case declared != "":
		if !validName(declared) {
			return nil, p.fail("invalid name %q", declared)
		}
		base = Declared{Name: strings.TrimPrefix(declared, "::")}
	case len(fundamentals) > 0:
		name, err := canonicalFundamental(fundamentals)
		if err != nil {
			return nil, p.fail("%v", err)
		}
		base = Fundamental{Name: name}
	default:
		return nil, p.fail("missing type name")
	}
	return Qualified(base, isConst, isVolatile), nil
}

func (p *typeParser) parseDimensions() ([]int, error) {
	var dims []int
	for {
		tok, ok := p.peek()
		if !ok {
			return dims, nil
		}
		if tok.kind != tokLBracket {
			return nil, p.fail("unexpected %q after array bound", tok.text)
		}
		p.pos++
		size := -1
		if tok, ok = p.peek(); ok && tok.kind == tokNumber {
			n, err := strconv.Atoi(tok.text)
			if err != nil {
				return nil, p.fail("bad array bound %q", tok.text)
			}
			size = n
			p.pos++
		}
		if tok, ok = p.peek(); !ok || tok.kind != tokRBracket {
			return nil, p.fail("unterminated array bound")
		}
		p.pos++
		dims = append(dims, size)
	}
}

// canonicalFundamental maps a multiset of fundamental keywords to the spelling
// CastXML uses ("long unsigned int", "short int", "signed char", ...).
func canonicalFundamental(words []string) (string, error) {
	count := make(map[string]int, len(words))
	for _, w := range words {
		count[w]++
	}
	for w, n := range count {
		if n > 1 && w != "long" {
			return "", fmt.Errorf("duplicate %q", w)
		}
	}
	if count["long"] > 2 {
		return "", errors.New("too many \"long\"")
	}
	if count["signed"] > 0 && count["unsigned"] > 0 {
		return "", errors.New("both signed and unsigned")
	}

	modifiers := count["signed"] + count["unsigned"] + count["short"] + count["long"]
	for w := range standalone {
		if count[w] > 0 {
			if len(words) != 1 {
				return "", fmt.Errorf("%q takes no modifiers", w)
			}
			return w, nil
		}
	}

	switch {
	case count["double"] > 0:
		switch {
		case len(words) == 1:
			return "double", nil
		case len(words) == 2 && count["long"] == 1:
			return "long double", nil
		}
		return "", errors.New("invalid double modifiers")
	case count["char"] > 0:
		if count["short"]+count["long"]+count["int"] > 0 {
			return "", errors.New("invalid char modifiers")
		}
		switch {
		case count["signed"] > 0:
			return "signed char", nil
		case count["unsigned"] > 0:
			return "unsigned char", nil
		}
		return "char", nil
	case count["__int128"] > 0:
		if modifiers-count["unsigned"]-count["signed"] > 0 || count["int"] > 0 {
			return "", errors.New("invalid __int128 modifiers")
		}
		if count["unsigned"] > 0 {
			return "unsigned __int128", nil
		}
		return "__int128", nil
	}

	if count["short"] > 0 && count["long"] > 0 {
		return "", errors.New("both short and long")
	}
	sign := ""
	if count["unsigned"] > 0 {
		sign = "unsigned "
	}
	switch {
	case count["short"] > 0:
		return "short " + sign + "int", nil
	case count["long"] == 2:
		return "long long " + sign + "int", nil
	case count["long"] == 1:
		return "long " + sign + "int", nil
	}
	return sign + "int", nil
}

func validName(name string) bool {
	name = strings.TrimPrefix(name, "::")
	if name == "" || strings.HasSuffix(name, "::") || strings.Contains(name, "::::") {
		return false
	}
	r := []rune(name)[0]
	return r == '_' || r == '~' || unicode.IsLetter(r)
}

func tokenize(spelling string) ([]token, error) {
	var toks []token
	s := spelling
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			i++
		case c == '*':
			toks = append(toks, token{kind: tokStar, text: "*"})
			i++
		case c == '&':
			if i+1 < len(s) && s[i+1] == '&' {
				toks = append(toks, token{kind: tokAmpAmp, text: "&&"})
				i += 2
				continue
			}
			toks = append(toks, token{kind: tokAmp, text: "&"})
			i++
		case c == '[':
			toks = append(toks, token{kind: tokLBracket, text: "["})
			i++
		case c == ']':
			toks = append(toks, token{kind: tokRBracket, text: "]"})
			i++
		case c >= '0' && c <= '9':
			j := i
			for j < len(s) && (isDigit(s[j]) || s[j] == 'u' || s[j] == 'U' || s[j] == 'l' || s[j] == 'L') {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: strings.TrimRight(s[i:j], "uUlL")})
			i = j
		case c == ':' || c == '_' || c == '~' || isLetter(c):
			j, err := scanName(s, i)
			if err != nil {
				return nil, &ParseError{Spelling: spelling, Reason: err.Error()}
			}
			toks = append(toks, token{kind: tokWord, text: normalizeName(s[i:j])})
			i = j
		default:
			return nil, &ParseError{Spelling: spelling, Reason: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	return toks, nil
}

// scanName reads a possibly qualified, possibly templated name starting at i and
// returns the index just past it. Template arguments are kept verbatim.
func scanName(s string, i int) (int, error) {
	j := i
	for j < len(s) {
		c := s[j]
		switch {
		case c == '_' || c == '~' || isLetter(c) || isDigit(c):
			j++
		case c == ':':
			if j+1 >= len(s) || s[j+1] != ':' {
				return 0, errors.New("stray ':'")
			}
			j += 2
		case c == '<':
			depth := 0
			for ; j < len(s); j++ {
				if s[j] == '<' {
					depth++
				} else if s[j] == '>' {
					depth--
					if depth == 0 {
						break
					}
				}
			}
			if j >= len(s) {
				return 0, errors.New("unbalanced template arguments")
			}
			j++
		default:
			return j, nil
		}
	}
	return j, nil
}

// normalizeName removes insignificant whitespace inside template arguments so that
// "vector< int >" and "vector<int>" compare equal.
func normalizeName(name string) string {
	if !strings.ContainsAny(name, " \t\n") {
		return name
	}
	fields := strings.Fields(name)
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			prev := fields[i-1][len(fields[i-1])-1]
			if isIdent(prev) && isIdent(f[0]) {
				b.WriteByte(' ')
			}
		}
		b.WriteString(f)
	}
	return b.String()
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isIdent(c byte) bool  { return c == '_' || isLetter(c) || isDigit(c) }
