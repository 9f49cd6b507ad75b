// Package logging provides the process-wide logger used by the search
// worker and its cli subsystems (decompression, preprocessing) to report
// debug-level fallbacks without aborting the search.
//
// This mirrors the teacher's own "no filtering here, just a sink to
// stderr" shape (grep's core/logger.rs): the level gate is entirely
// zerolog's, configured once via SetVerbose.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger. It is disabled (level above Debug)
// until SetVerbose(true) is called, matching the CLI's `-v` flag.
var Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
	Level(zerolog.InfoLevel).
	With().Timestamp().Logger()

// SetVerbose raises or lowers the global level threshold.
func SetVerbose(yes bool) {
	if yes {
		Logger = Logger.Level(zerolog.DebugLevel)
	} else {
		Logger = Logger.Level(zerolog.InfoLevel)
	}
}

// Errored is a process-wide flag set whenever any haystack produces an
// error the worker decides is non-fatal but still exit-status-relevant
// (spec.md §7: "exit status becomes 2 at end of program").
var errored bool

// MarkErrored records that at least one error occurred during the run.
func MarkErrored() { errored = true }

// HasErrored reports whether MarkErrored has been called.
func HasErrored() bool { return errored }
