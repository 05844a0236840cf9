// Package logging builds the charmbracelet loggers used across prism. All
// loggers share one level so the CLI can raise or lower verbosity in one
// place.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.Mutex
	level   log.Level = log.WarnLevel
	output  io.Writer = os.Stderr
	loggers []*log.Logger
)

// New returns a logger writing to the shared sink with the given prefix.
func New(prefix string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()

	l := log.NewWithOptions(output, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          prefix,
		Level:           level,
	})
	loggers = append(loggers, l)
	return l
}

// SetLevel changes the level of every logger created by New, including
// those created later.
func SetLevel(l log.Level) {
	mu.Lock()
	defer mu.Unlock()

	level = l
	for _, lg := range loggers {
		lg.SetLevel(l)
	}
}

// Level returns the shared level.
func Level() log.Level {
	mu.Lock()
	defer mu.Unlock()
	return level
}

// SetOutput redirects every logger to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	output = w
	for _, lg := range loggers {
		lg.SetOutput(w)
	}
}
