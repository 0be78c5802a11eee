package sysutil

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" INFO ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"panic":   zerolog.PanicLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupLogging_ComponentAndLevel(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	setupLogging(&buf, "feedbackctl", "warn", false)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("want exactly one JSON line, got %q: %v", buf.String(), err)
	}
	if line["component"] != "feedbackctl" || line["message"] != "shown" || line["time"] == nil {
		t.Fatalf("line = %v", line)
	}

	buf.Reset()
	setupLogging(&buf, "server", "debug", true)
	log.Debug().Msg("pretty")
	if !bytes.Contains(buf.Bytes(), []byte("pretty")) || bytes.HasPrefix(buf.Bytes(), []byte("{")) {
		t.Fatalf("console output = %q", buf.String())
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", "http://api", "x"); got != "http://api" {
		t.Fatalf("got %q", got)
	}
	if FirstNonEmpty() != "" || FirstNonEmpty(" ") != "" {
		t.Fatal("expected empty")
	}
}
