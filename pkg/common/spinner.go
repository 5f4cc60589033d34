package common

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner wraps github.com/briandowns/spinner with start/stop behavior
// that respects VerboseEnabled: under --verbose, log lines are plentiful
// enough that an animated spinner just adds noise, so it never starts.
//
// It also tracks how long it ran, so a long solve can fold search duration
// into its own completion line instead of timing the spin separately.
type Spinner struct {
	s       *spinner.Spinner
	started time.Time
}

// NewSpinner creates a spinner with msg as its suffix.
func NewSpinner(msg string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + msg
	_ = s.Color("cyan", "bold")
	return &Spinner{s: s}
}

// Start starts the spinner, unless VerboseEnabled is set, and starts the
// clock Stop reports against.
func (s *Spinner) Start() {
	s.started = time.Now()
	if !VerboseEnabled {
		s.s.Start()
	}
}

// Stop stops the spinner and returns how long it ran since Start.
func (s *Spinner) Stop() time.Duration {
	s.s.Stop()
	if s.started.IsZero() {
		return 0
	}
	return time.Since(s.started)
}

// UpdateMessage replaces the spinner's suffix.
func (s *Spinner) UpdateMessage(format string, args ...interface{}) {
	s.s.Suffix = " " + fmt.Sprintf(format, args...)
}

// logAround stops the spinner for the duration of one log call so the
// line doesn't get torn by the next redraw, then restarts it if it was
// running. LogInfo and LogWarning differ only in which log function they
// hand to this.
func (s *Spinner) logAround(logFn func(string, ...interface{}), format string, args ...interface{}) {
	wasRunning := s.s.Active()
	if wasRunning {
		s.s.Stop()
	}
	logFn(format, args...)
	if wasRunning && !VerboseEnabled {
		s.s.Start()
	}
}

// LogInfo logs an info line without tearing the spinner's current line.
func (s *Spinner) LogInfo(format string, args ...interface{}) {
	s.logAround(Info, format, args...)
}

// LogWarning logs a warning line without tearing the spinner's current line.
func (s *Spinner) LogWarning(format string, args ...interface{}) {
	s.logAround(Warning, format, args...)
}
