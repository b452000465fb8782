package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestNewWithWriter_Level(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{name: "Debug", level: "debug", expected: zerolog.DebugLevel},
		{name: "Upper case", level: "WARN", expected: zerolog.WarnLevel},
		{name: "Empty falls back", level: "", expected: zerolog.InfoLevel},
		{name: "Unknown falls back", level: "chatty", expected: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewWithWriter(tt.level, &bytes.Buffer{})
			if l.GetLevel() != tt.expected {
				t.Errorf("GetLevel() = %v, want %v", l.GetLevel(), tt.expected)
			}
		})
	}
}

func TestNewWithWriter_InstallsGlobal(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("info", &buf)

	log.Info().Str("postID", "42").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}

	if entry["message"] != "hello" {
		t.Errorf("message = %v, want hello", entry["message"])
	}
	if entry["postID"] != "42" {
		t.Errorf("postID = %v, want 42", entry["postID"])
	}
	for _, key := range []string{"time", "caller", "pid"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("log entry is missing %q", key)
		}
	}
}
