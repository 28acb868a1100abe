package cli

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/strata/pkg/layout"
)

// newLogger returns the CLI logger. Timestamps look like "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress measures one command step for --verbose output.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the wall time since the step started.
func (p *progress) done(msg string) {
	p.logger.Debug(msg, "elapsed", time.Since(p.start).Round(time.Millisecond))
}

// stages logs the time a fresh layout spent in each stage, slowest first.
// Cached results carry the timings of the run that produced them, so they
// are skipped.
func (p *progress) stages(s layout.Stats, cached bool) {
	if cached || len(s.Stages) == 0 {
		return
	}
	names := make([]string, 0, len(s.Stages))
	for name := range s.Stages {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return int(s.Stages[b] - s.Stages[a])
	})
	for _, name := range names {
		p.logger.Debug("stage", "name", name, "duration", s.Stages[name].Round(time.Microsecond))
	}
}
