package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/zpam/hamspam/pkg/config"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	log.Debug().Msg("hidden")
	log.Info().Str("op", "classify").Msg("done")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected one line at info level, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Log line is not JSON: %v", err)
	}
	if entry["message"] != "done" || entry["op"] != "classify" || entry["service"] != "hamspam" {
		t.Errorf("Unexpected entry: %v", entry)
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(config.LoggingConfig{Level: "DEBUG", Format: "console"}, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	log.Debug().Msg("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("Expected debug line, got %q", buf.String())
	}
}

func TestNewRejectsBadSettings(t *testing.T) {
	if _, err := New(config.LoggingConfig{Level: "loud", Format: "json"}, nil); err == nil {
		t.Error("Expected error for bad level")
	}
	if _, err := New(config.LoggingConfig{Level: "info", Format: "xml"}, nil); err == nil {
		t.Error("Expected error for bad format")
	}
}
