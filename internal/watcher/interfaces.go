package watcher

import "context"

// FileWatcher monitors headers for changes with debouncing and pause/resume support.
type FileWatcher interface {
	// Start begins watching, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}

// PathFilter decides which paths under the watched root are of interest. Paths
// are relative to the root and slash-separated. session.HeaderDiscovery
// implements it.
type PathFilter interface {
	Matches(relPath string) bool
	IgnoresDir(relPath string) bool
}

// Reloader is a component refreshed after headers change, such as a session or
// a graph searcher.
type Reloader interface {
	Reload(ctx context.Context) error
}
