// Package clilog builds the terminal logger shared by the commands.
package clilog

import (
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a slog logger writing colored, timestamped lines to w.
// Debug records are shown only when verbose is set.
func New(w io.Writer, prefix string, verbose bool) *slog.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          prefix,
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	}
	return slog.New(l)
}
