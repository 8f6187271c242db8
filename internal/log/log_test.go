package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriter_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: slog.LevelInfo})

	logger.Info("memory saved", "source", "manual")

	out := buf.String()
	if !strings.Contains(out, "memory saved") {
		t.Errorf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, "source=manual") {
		t.Errorf("expected attribute in output, got %q", out)
	}
}

func TestNewWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{JSON: true})

	logger.Info("query processed")

	out := buf.String()
	if !strings.Contains(out, `"msg":"query processed"`) {
		t.Errorf("expected JSON message, got %q", out)
	}
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: slog.LevelWarn})

	logger.Debug("should not appear")
	logger.Info("should not appear either")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("debug/info output leaked through warn level: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("expected warn output, got %q", out)
	}
}

func TestNewNop_DiscardsOutput(t *testing.T) {
	logger := NewNop()
	// Must not panic and must accept any level.
	logger.Debug("discarded")
	logger.Error("also discarded")
}
