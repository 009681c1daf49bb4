package session

// ProgressReporter provides callbacks for reporting load progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryComplete is called after header discovery with the number found.
	OnDiscoveryComplete(headers int)

	// OnParseStart is called before the inputs are read or generated.
	OnParseStart(total int)

	// OnInputParsed is called after each input. cached is true when the dump came
	// from the cache instead of a castxml run.
	OnInputParsed(path string, cached bool)

	// OnComplete is called when the tree is built and comments are attached.
	OnComplete(stats Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnDiscoveryComplete(headers int)        {}
func (NoOpProgressReporter) OnParseStart(total int)                 {}
func (NoOpProgressReporter) OnInputParsed(path string, cached bool) {}
func (NoOpProgressReporter) OnComplete(stats Stats)                 {}
