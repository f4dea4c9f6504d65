package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, INFO)
	log.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	log.Debug("hidden %d", 1)
	log.Info("frame id=0x%X", 0x100)
	log.Critical("boom")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line written at INFO: %q", out)
	}
	if !strings.Contains(out, "2024-01-02T03:04:05Z [INFO] frame id=0x100\n") {
		t.Fatalf("missing info line: %q", out)
	}
	if !strings.Contains(out, "[CRITICAL] boom") {
		t.Fatalf("missing critical line: %q", out)
	}

	log.SetMinLevel(TRACE)
	if !log.Enabled(TRACE) {
		t.Fatalf("TRACE should be enabled")
	}
	log.Trace("now visible")
	if !strings.Contains(buf.String(), "[TRACE] now visible") {
		t.Fatalf("trace line missing: %q", buf.String())
	}
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canmon.log")
	log, err := NewFileLogger(path, WARN, false)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	log.Info("skip")
	log.Error("kept %s", "line")
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "skip") || !strings.Contains(string(data), "[ERROR] kept line") {
		t.Fatalf("log file = %q", data)
	}
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{
		"trace": TRACE, "DEBUG": DEBUG, "info": INFO, "warning": WARN, "error": ERROR, "critical": CRITICAL,
	} {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, %v", in, got, err)
		}
	}
	if lvl, err := ParseLogLevel("loud"); err == nil || lvl != INFO {
		t.Fatalf("ParseLogLevel(loud) = %v, %v", lvl, err)
	}
}
