package graph

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/maypok86/otter"
)

// searcher implements Searcher with an in-memory graph and reverse indexes.
type searcher struct {
	source  Source
	rootDir string
	logger  *slog.Logger
	mu      sync.RWMutex // Protects graph and indexes

	// Contains and uses edges, for path queries
	graph graph.Graph[string, *Node]

	// Indexes for O(1) lookups
	byName  map[string][]string // qualified name -> [ids]
	uses    map[string][]string // declaration -> [used declarations]
	usedBy  map[string][]string // declaration -> [users]
	members map[string][]string // scope -> [children]

	// Source lines for context injection
	files otter.Cache[string, []string]
}

// resultWithDepth is an internal type for tracking depth in traversal.
type resultWithDepth struct {
	id    string
	depth int
}

// SearcherOption configures a Searcher.
type SearcherOption func(*searcher)

// WithLogger sets the logger used for reload diagnostics.
func WithLogger(l *slog.Logger) SearcherOption {
	return func(s *searcher) {
		s.logger = l
	}
}

// NewSearcher creates a searcher over source and loads it. Relative node files
// are resolved against rootDir when extracting context.
func NewSearcher(source Source, rootDir string, opts ...SearcherOption) (Searcher, error) {
	files, err := otter.MustBuilder[string, []string](MaxFileCacheSize).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create file cache: %w", err)
	}

	s := &searcher{
		source:  source,
		rootDir: rootDir,
		logger:  slog.Default(),
		files:   files,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Reload(context.Background()); err != nil {
		files.Close()
		return nil, err
	}
	return s, nil
}

// Reload reloads the graph from its source and rebuilds indexes.
func (s *searcher) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := s.source.Load()
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}
	if data == nil {
		data = &GraphData{}
	}

	g := graph.New(func(n *Node) string { return n.ID }, graph.Directed())
	byName := make(map[string][]string)
	for i := range data.Nodes {
		node := &data.Nodes[i]
		if err := g.AddVertex(node); err != nil {
			return fmt.Errorf("failed to add node %s: %w", node.ID, err)
		}
		byName[node.Name] = append(byName[node.Name], node.ID)
	}

	uses := make(map[string][]string)
	usedBy := make(map[string][]string)
	members := make(map[string][]string)
	skipped := 0
	for _, edge := range data.Edges {
		// Dangling ends come from hand-edited or stale snapshots.
		if err := g.AddEdge(edge.From, edge.To, graph.EdgeAttribute("type", string(edge.Type))); err != nil {
			if _, vErr := g.Vertex(edge.From); vErr != nil {
				skipped++
				continue
			}
			if _, vErr := g.Vertex(edge.To); vErr != nil {
				skipped++
				continue
			}
		}

		switch edge.Type {
		case EdgeUses:
			uses[edge.From] = append(uses[edge.From], edge.To)
			usedBy[edge.To] = append(usedBy[edge.To], edge.From)
		case EdgeContains:
			members[edge.From] = append(members[edge.From], edge.To)
		}
	}
	if skipped > 0 {
		s.logger.Warn("skipped graph edges with unknown endpoints", "count", skipped)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g
	s.byName = byName
	s.uses = uses
	s.usedBy = usedBy
	s.members = members
	s.files.Clear()
	return nil
}

// Query executes a graph query.
func (s *searcher) Query(ctx context.Context, req *QueryRequest) (*QueryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	depth := clamp(req.Depth, DefaultDepth, MaxDepth)
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	contextLines := clamp(req.ContextLines, DefaultContextLines, MaxContextLines)

	targets, err := s.resolve(req.Target)
	if err != nil {
		return nil, err
	}

	var found []resultWithDepth
	switch req.Operation {
	case OperationDependencies:
		found = s.traverse(targets, depth, s.dependenciesOf)
	case OperationDependents:
		found = s.traverse(targets, depth, func(id string) []string { return s.usedBy[id] })
	case OperationMembers:
		found = s.traverse(targets, depth, func(id string) []string { return s.members[id] })
	case OperationPath:
		to, err := s.resolve(req.To)
		if err != nil {
			return nil, err
		}
		found = s.shortestPath(targets, to)
	default:
		return nil, fmt.Errorf("unsupported operation: %s", req.Operation)
	}

	results := []QueryResult{}
	for _, rd := range found {
		node, err := s.graph.Vertex(rd.id)
		if err != nil {
			continue
		}
		result := QueryResult{Node: node, Depth: rd.depth}
		if req.IncludeContext && node.File != "" && node.Line > 0 {
			if snippet, err := s.extractContext(node.File, node.Line, contextLines); err == nil {
				result.Context = snippet
			}
		}
		results = append(results, result)
		if len(results) >= maxResults {
			break
		}
	}

	return &QueryResponse{
		Operation:     string(req.Operation),
		Target:        req.Target,
		Results:       results,
		TotalFound:    len(found),
		TotalReturned: len(results),
		Truncated:     len(results) < len(found),
		Metadata: ResponseMeta{
			TookMs: int(time.Since(start).Milliseconds()),
			Source: "graph",
		},
	}, nil
}

// resolve maps a declaration id or qualified name to node ids.
func (s *searcher) resolve(target string) ([]string, error) {
	if target == "" {
		return nil, fmt.Errorf("%w: empty target", ErrNodeNotFound)
	}
	if _, err := s.graph.Vertex(target); err == nil {
		return []string{target}, nil
	}
	if ids := s.byName[strings.TrimPrefix(target, "::")]; len(ids) > 0 {
		return ids, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, target)
}

// traverse walks next breadth-first from starts, reporting every node once at
// the depth it was first reached.
func (s *searcher) traverse(starts []string, depth int, next func(string) []string) []resultWithDepth {
	results := []resultWithDepth{}
	visited := make(map[string]bool, len(starts))
	for _, id := range starts {
		visited[id] = true
	}

	frontier := starts
	for d := 1; d <= depth && len(frontier) > 0; d++ {
		var following []string
		for _, id := range frontier {
			for _, n := range next(id) {
				if visited[n] {
					continue
				}
				visited[n] = true
				results = append(results, resultWithDepth{id: n, depth: d})
				following = append(following, n)
			}
		}
		frontier = following
	}
	return results
}

// dependenciesOf returns what id and its descendants use, outside id's own
// subtree. A class depends on the types its members name.
func (s *searcher) dependenciesOf(id string) []string {
	subtree := map[string]bool{id: true}
	scopes := []string{id}
	for i := 0; i < len(scopes); i++ {
		for _, child := range s.members[scopes[i]] {
			subtree[child] = true
			scopes = append(scopes, child)
		}
	}

	var deps []string
	seen := make(map[string]bool)
	for _, scope := range scopes {
		for _, used := range s.uses[scope] {
			if subtree[used] || seen[used] {
				continue
			}
			seen[used] = true
			deps = append(deps, used)
		}
	}
	return deps
}

// shortestPath returns the nodes of the shortest path from any of from to any of
// to, excluding the start, or nothing when none is reachable.
func (s *searcher) shortestPath(from, to []string) []resultWithDepth {
	var best []string
	for _, f := range from {
		for _, t := range to {
			path, err := graph.ShortestPath(s.graph, f, t)
			if err != nil || len(path) == 0 {
				continue
			}
			if best == nil || len(path) < len(best) {
				best = path
			}
		}
	}

	results := []resultWithDepth{}
	for i := 1; i < len(best); i++ {
		results = append(results, resultWithDepth{id: best[i], depth: i})
	}
	return results
}

// extractContext returns the lines around line with a location header.
func (s *searcher) extractContext(file string, line, contextLines int) (string, error) {
	lines, err := s.fileLines(file)
	if err != nil {
		return "", err
	}

	from := max(0, line-contextLines-1)
	to := min(len(lines), line+contextLines)
	if from >= to {
		return "", fmt.Errorf("line %d out of range for %s", line, file)
	}

	return fmt.Sprintf("// Lines %d-%d\n", from+1, to) + strings.Join(lines[from:to], "\n"), nil
}

func (s *searcher) fileLines(file string) ([]string, error) {
	if lines, ok := s.files.Get(file); ok {
		return lines, nil
	}

	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.rootDir, path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(content), "\n")
	s.files.Set(file, lines)
	return lines, nil
}

// Close releases the file cache.
func (s *searcher) Close() error {
	s.files.Close()
	return nil
}

func clamp(v, def, limit int) int {
	if v <= 0 {
		return def
	}
	return min(v, limit)
}
