package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	// GraphFileName is the name of the graph snapshot file
	GraphFileName = "decl-graph.json"
	// GraphVersion is the current version of the snapshot format
	GraphVersion = "1.0"
)

// ErrVersionMismatch is returned by Load when the snapshot was written by an
// incompatible version. Callers rebuild the graph from the declaration tree.
var ErrVersionMismatch = errors.New("graph snapshot version mismatch")

// Storage handles reading and writing graph snapshots to disk. It is also a
// Source, so a Searcher can serve a saved snapshot.
type Storage interface {
	// Load reads the snapshot. Returns nil, nil if none was saved yet.
	Load() (*GraphData, error)

	// Save writes the snapshot through a temp file and a rename, holding a lock
	// file so concurrent writers do not share the temp file.
	Save(data *GraphData) error

	// Exists reports whether a snapshot file is present.
	Exists() bool

	// Remove deletes the snapshot. Removing a missing snapshot is not an error.
	Remove() error
}

type storage struct {
	graphDir string // .cxxscope/graph/
	now      func() time.Time
}

// NewStorage creates graphDir and its temp directory and returns a Storage
// rooted there.
func NewStorage(graphDir string) (Storage, error) {
	if err := os.MkdirAll(filepath.Join(graphDir, ".tmp"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create graph directory: %w", err)
	}
	return &storage{graphDir: graphDir, now: time.Now}, nil
}

func (s *storage) Load() (*GraphData, error) {
	raw, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}

	var data GraphData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse graph JSON: %w", err)
	}
	if data.Metadata.Version != GraphVersion {
		return nil, fmt.Errorf("%w: have %q, want %q", ErrVersionMismatch, data.Metadata.Version, GraphVersion)
	}
	return &data, nil
}

func (s *storage) Save(data *GraphData) error {
	if data == nil {
		return errors.New("graph data is nil")
	}
	data.Metadata = GraphMetadata{
		Version:     GraphVersion,
		GeneratedAt: s.now().UTC(),
		NodeCount:   len(data.Nodes),
		EdgeCount:   len(data.Edges),
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal graph data: %w", err)
	}

	lock := flock.New(filepath.Join(s.graphDir, ".tmp", GraphFileName+".lock"))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock graph directory: %w", err)
	}
	defer lock.Unlock()

	tmp := filepath.Join(s.graphDir, ".tmp", GraphFileName)
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("failed to write temp graph file: %w", err)
	}
	if err := os.Rename(tmp, s.path()); err != nil {
		return fmt.Errorf("failed to rename temp graph file: %w", err)
	}
	return nil
}

func (s *storage) Exists() bool {
	_, err := os.Stat(s.path())
	return err == nil
}

func (s *storage) Remove() error {
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove graph file: %w", err)
	}
	return nil
}

func (s *storage) path() string {
	return filepath.Join(s.graphDir, GraphFileName)
}
