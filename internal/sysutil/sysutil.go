// Package sysutil holds process setup shared by the server and feedbackctl.
package sysutil

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging replaces the global logger for a binary. Every line carries
// the component name ("server", "feedbackctl"). Logs always go to stderr so
// the CLI's stdout stays clean for command output.
func SetupLogging(component, level string, pretty bool) {
	setupLogging(os.Stderr, component, level, pretty)
}

func setupLogging(w io.Writer, component, level string, pretty bool) {
	zerolog.SetGlobalLevel(ParseLevel(level))
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Str("component", component).Logger()
}

// ParseLevel maps a LOG_LEVEL value onto zerolog. Empty or unknown values
// mean info.
func ParseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// FirstNonEmpty returns the first value that is not blank.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
