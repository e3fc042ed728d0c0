package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wonny/quantengine/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *config.Config
		wantLevel zerolog.Level
	}{
		{
			name:      "debug level",
			cfg:       &config.Config{Env: "development", LogLevel: "debug", LogFormat: "json"},
			wantLevel: zerolog.DebugLevel,
		},
		{
			name:      "warn level console",
			cfg:       &config.Config{Env: "staging", LogLevel: "warn", LogFormat: "console"},
			wantLevel: zerolog.WarnLevel,
		},
		{
			name:      "error level",
			cfg:       &config.Config{Env: "production", LogLevel: "error", LogFormat: "json"},
			wantLevel: zerolog.ErrorLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.cfg)
			if logger == nil {
				t.Fatal("Expected logger to be created")
			}
			if zerolog.GlobalLevel() != tt.wantLevel {
				t.Errorf("Expected global level %v, got %v", tt.wantLevel, zerolog.GlobalLevel())
			}
		})
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestNewWithWriter_Fields(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug").WithComponent("scanner")

	log.WithFields(map[string]interface{}{
		"analyzed": 12,
		"created":  3,
	}).Info("scan completed")

	entry := decode(t, &buf)
	if entry["component"] != "scanner" {
		t.Errorf("component = %v, want scanner", entry["component"])
	}
	if entry["message"] != "scan completed" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["analyzed"] != float64(12) {
		t.Errorf("analyzed = %v, want 12", entry["analyzed"])
	}
}

func TestWithError(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	NewWithWriter(&buf, "info").WithError(errors.New("boom")).Warnf("attempt %d", 2)

	entry := decode(t, &buf)
	if entry["error"] != "boom" {
		t.Errorf("error = %v, want boom", entry["error"])
	}
	if entry["message"] != "attempt 2" {
		t.Errorf("message = %v, want attempt 2", entry["message"])
	}
	if entry["level"] != "warn" {
		t.Errorf("level = %v, want warn", entry["level"])
	}
}

func TestLevelFiltering(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")
	log.Debug("hidden")
	log.Info("hidden")

	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got %q", buf.String())
	}
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Info("discarded")
	log.WithField("k", "v").Error("discarded")
}
