// Package comments recovers source comments and attaches them to the declarations
// they document.
package comments

import (
	"bytes"
	"strings"
)

// Style is the lexical form of a comment, identified by its opening marker.
type Style string

const (
	StyleLine      Style = "//"
	StyleDocLine   Style = "///"
	StyleBangLine  Style = "//!"
	StyleBlock     Style = "/*"
	StyleDocBlock  Style = "/**"
	StyleBangBlock Style = "/*!"
	StyleUnknown   Style = ""
)

// Classify returns the style of a raw comment text. Runs of four or more slashes
// are plain line comments, and "/**/" is an empty plain block.
func Classify(text string) Style {
	text = strings.TrimLeft(text, " \t")
	switch {
	case strings.HasPrefix(text, "////"):
		return StyleLine
	case strings.HasPrefix(text, "///"):
		return StyleDocLine
	case strings.HasPrefix(text, "//!"):
		return StyleBangLine
	case strings.HasPrefix(text, "//"):
		return StyleLine
	case strings.HasPrefix(text, "/**/"), strings.HasPrefix(text, "/***"):
		return StyleBlock
	case strings.HasPrefix(text, "/**"):
		return StyleDocBlock
	case strings.HasPrefix(text, "/*!"):
		return StyleBangBlock
	case strings.HasPrefix(text, "/*"):
		return StyleBlock
	}
	return StyleUnknown
}

// IsLine reports whether s is one of the single-line styles.
func (s Style) IsLine() bool {
	return s == StyleLine || s == StyleDocLine || s == StyleBangLine
}

// Record is one comment recovered from a source file.
type Record struct {
	File  string
	Begin int // first line, 1-indexed
	End   int // last line, 1-indexed
	Lines []string
	Style Style

	// Following is the line where the next code or comment starts: End itself when
	// code follows the comment on that line, otherwise the first non-blank line
	// after End. Zero means unknown and is treated as End+1.
	Following int

	// Trailing is set when code precedes the comment on its first line, as in
	// "int x; // note".
	Trailing bool
}

func (r Record) following() int {
	if r.Following > 0 {
		return r.Following
	}
	return r.End + 1
}

// NewRecord builds a record for the comment occupying src[start:end]. Lines and
// Following are derived from the surrounding source.
func NewRecord(file string, src []byte, start, end int) Record {
	text := string(src[start:end])
	begin := 1 + bytes.Count(src[:start], []byte("\n"))
	last := begin + strings.Count(text, "\n")

	lineStart := bytes.LastIndexByte(src[:start], '\n') + 1
	prefix := bytes.TrimSpace(src[lineStart:start])

	return Record{
		File:      file,
		Begin:     begin,
		End:       last,
		Lines:     splitLines(text),
		Style:     Classify(text),
		Following: followingLine(src, end, last),
		Trailing:  len(prefix) > 0,
	}
}

// FromLines builds a record from already extracted comment lines, as CastXML
// reports them. following may be zero when the source is not available.
func FromLines(file string, begin int, lines []string, following int) Record {
	lines = trimLines(lines)
	text := strings.Join(lines, "\n")
	return Record{
		File:      file,
		Begin:     begin,
		End:       begin + len(lines) - 1,
		Lines:     lines,
		Style:     Classify(text),
		Following: following,
	}
}

// FollowingLine returns the first non-blank line after line end in src, or zero
// when the rest of the file is blank.
func FollowingLine(src []byte, end int) int {
	lines := strings.Split(string(src), "\n")
	for i := end; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return i + 1
		}
	}
	return 0
}

// followingLine is FollowingLine starting from a byte offset known to lie on line
// last. Code after the comment on that same line makes last the following line.
func followingLine(src []byte, offset, last int) int {
	rest := src[offset:]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 {
		if len(bytes.TrimSpace(rest)) > 0 {
			return last
		}
		return 0
	}
	if len(bytes.TrimSpace(rest[:nl])) > 0 {
		return last
	}
	line := last + 1
	for _, l := range bytes.Split(rest[nl+1:], []byte("\n")) {
		if len(bytes.TrimSpace(l)) > 0 {
			return line
		}
		line++
	}
	return 0
}

func splitLines(text string) []string {
	return trimLines(strings.Split(text, "\n"))
}

func trimLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimSpace(l)
	}
	return out
}
