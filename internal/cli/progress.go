package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/cxxscope/internal/session"
)

// CLIProgressReporter implements session.ProgressReporter with a progress bar.
type CLIProgressReporter struct {
	out      io.Writer
	quiet    bool
	parseBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a reporter writing to out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{out: out, quiet: quiet}
}

func (c *CLIProgressReporter) OnDiscoveryComplete(headers int) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, "Discovered %s headers\n", formatNumber(headers))
}

func (c *CLIProgressReporter) OnParseStart(total int) {
	if c.quiet || total < 2 {
		return
	}
	c.parseBar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Parsing headers"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnInputParsed(path string, cached bool) {
	if c.parseBar != nil {
		c.parseBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnComplete(stats session.Stats) {
	if c.parseBar != nil {
		c.parseBar.Finish()
		c.parseBar = nil
	}
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, "✓ Loaded %s declarations from %s inputs in %.1fs\n",
		formatNumber(stats.Declarations), formatNumber(stats.Inputs), stats.Duration.Seconds())
}
