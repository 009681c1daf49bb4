package comments

import (
	"log/slog"
	"sort"

	"github.com/mvp-joe/cxxscope/internal/decls"
)

// Result summarizes one association pass.
type Result struct {
	Groups   int // merged comment groups considered
	Attached int
	Dropped  int
}

// Option configures Associate.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for per-pass statistics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// group is a run of records attached as one comment.
type group struct {
	file      string
	begin     int
	end       int
	lines     []string
	following int
}

// Associate attaches comment records to the declarations under root.
//
// Adjacent single-line records of the same style are merged first. A group then
// attaches to the declaration that starts on the group's following line, provided
// that declaration is named and not compiler-generated, was not already claimed in this pass,
// and its enclosing scope opens before the comment. Groups with no such target and
// trailing comments are dropped. Attaching replaces any previous comment, so
// running Associate twice with the same records yields the same tree.
func Associate(root *decls.Declaration, records []Record, opts ...Option) Result {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	groups := merge(records)
	targets := targetsByFile(root)
	cursor := make(map[string]int, len(targets))
	claimed := make(map[*decls.Declaration]bool)

	res := Result{Groups: len(groups)}
	for _, g := range groups {
		list := targets[g.file]
		i := cursor[g.file]
		for i < len(list) && list[i].Location.Line < g.following {
			i++
		}
		cursor[g.file] = i

		var target *decls.Declaration
		for j := i; j < len(list) && list[j].Location.Line == g.following; j++ {
			d := list[j]
			if claimed[d] || !sameScope(d, g) {
				continue
			}
			target = d
			break
		}
		if target == nil {
			res.Dropped++
			continue
		}

		claimed[target] = true
		target.SetComment(&decls.Comment{
			Text:      append([]string(nil), g.lines...),
			File:      g.file,
			BeginLine: g.begin,
			EndLine:   g.end,
		})
		res.Attached++
	}

	o.logger.Debug("comments associated",
		"groups", res.Groups,
		"attached", res.Attached,
		"dropped", res.Dropped)
	return res
}

// merge sorts records by position and joins runs of single-line comments of the
// same style on consecutive lines. Trailing comments are discarded.
func merge(records []Record) []group {
	sorted := make([]Record, 0, len(records))
	for _, r := range records {
		if !r.Trailing && len(r.Lines) > 0 {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].File != sorted[j].File {
			return sorted[i].File < sorted[j].File
		}
		return sorted[i].Begin < sorted[j].Begin
	})

	var groups []group
	var prev *Record
	for i := range sorted {
		r := &sorted[i]
		if prev != nil && joinable(prev, r) {
			g := &groups[len(groups)-1]
			g.lines = append(g.lines, r.Lines...)
			g.end = r.End
			g.following = r.following()
		} else {
			groups = append(groups, group{
				file:      r.File,
				begin:     r.Begin,
				end:       r.End,
				lines:     append([]string(nil), r.Lines...),
				following: r.following(),
			})
		}
		prev = r
	}
	return groups
}

func joinable(prev, next *Record) bool {
	return prev.File == next.File &&
		prev.Style == next.Style &&
		prev.Style.IsLine() &&
		prev.Begin == prev.End &&
		next.Begin == next.End &&
		next.Begin == prev.End+1
}

// targetsByFile collects candidate declarations per file, sorted by line. Ties keep
// pre-order, so an enclosing declaration comes before its members. Anonymous and
// artificial declarations are never targets.
func targetsByFile(root *decls.Declaration) map[string][]*decls.Declaration {
	out := make(map[string][]*decls.Declaration)
	root.Walk(func(d *decls.Declaration) bool {
		if d.IsRoot() || d.Artificial || d.Name == "" || d.Location == nil {
			return true
		}
		out[d.Location.File] = append(out[d.Location.File], d)
		return true
	})
	for _, list := range out {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Location.Line < list[j].Location.Line
		})
	}
	return out
}

// sameScope reports whether d's enclosing declaration opens before the comment, so
// the comment lies inside d's scope rather than ahead of it.
func sameScope(d *decls.Declaration, g group) bool {
	p := d.Parent()
	if p == nil || p.IsRoot() || p.Location == nil || p.Location.File != g.file {
		return true
	}
	return p.Location.Line < g.begin
}
