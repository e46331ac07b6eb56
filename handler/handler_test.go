package handler

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fieldline/logpipe/core"
	"github.com/fieldline/logpipe/formatter"
)

func testRecord(level core.Level, msg string) *core.Record {
	return &core.Record{
		Time:    time.Now(),
		Logger:  "test",
		Level:   level,
		Message: msg,
	}
}

func TestConsoleHandler_Emit(t *testing.T) {
	var buf bytes.Buffer
	h := NewConsoleHandler(ConsoleConfig{
		Writer:    &buf,
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})
	defer h.Close()

	err := h.Emit(testRecord(core.InfoLevel, "test message"))
	if err != nil {
		t.Errorf("Emit() error = %v", err)
	}

	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("Expected 'test message' in output, got: %s", buf.String())
	}
}

func TestConsoleHandler_NoColorOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	h := NewConsoleHandler(ConsoleConfig{
		Writer: &buf,
	})
	defer h.Close()

	if err := h.Emit(testRecord(core.ErrorLevel, "plain")); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	// A bytes.Buffer is not a terminal, so no escape codes may appear.
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("Expected no ANSI codes when writer is not a TTY, got: %q", buf.String())
	}
}

func TestConsoleHandler_Threshold(t *testing.T) {
	var buf bytes.Buffer
	h := NewConsoleHandler(ConsoleConfig{
		Writer:   &buf,
		MinLevel: core.WarnLevel,
	})
	defer h.Close()

	if h.Accepts(testRecord(core.InfoLevel, "below")) {
		t.Error("Expected INFO record to be rejected at WARN threshold")
	}
	if !h.Accepts(testRecord(core.WarnLevel, "at")) {
		t.Error("Expected WARN record to be accepted at WARN threshold")
	}
	if !h.Accepts(testRecord(core.ErrorLevel, "above")) {
		t.Error("Expected ERROR record to be accepted at WARN threshold")
	}
}

func TestConsoleHandler_MaxLevelCapsSeverity(t *testing.T) {
	var buf bytes.Buffer
	h := NewConsoleHandler(ConsoleConfig{
		Writer:   &buf,
		MaxLevel: core.InfoLevel,
	})
	defer h.Close()

	if !h.Accepts(testRecord(core.DebugLevel, "routine")) {
		t.Error("Expected DEBUG record inside the band to be accepted")
	}
	if !h.Accepts(testRecord(core.InfoLevel, "routine")) {
		t.Error("Expected INFO record at the cap to be accepted")
	}
	if h.Accepts(testRecord(core.WarnLevel, "trouble")) {
		t.Error("Expected WARN record above the cap to be rejected")
	}
	if h.Accepts(testRecord(core.ErrorLevel, "trouble")) {
		t.Error("Expected ERROR record above the cap to be rejected")
	}
}

func TestStructuredHandler_SeverityBand(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewStructuredHandler(StructuredConfig{
		Writer:   &buf,
		MinLevel: core.InfoLevel,
		MaxLevel: core.WarnLevel,
	})
	if err != nil {
		t.Fatalf("NewStructuredHandler() error = %v", err)
	}
	defer h.Close()

	if h.Accepts(testRecord(core.DebugLevel, "below")) {
		t.Error("Expected DEBUG record below the band to be rejected")
	}
	if !h.Accepts(testRecord(core.InfoLevel, "inside")) || !h.Accepts(testRecord(core.WarnLevel, "inside")) {
		t.Error("Expected records inside the band to be accepted")
	}
	if h.Accepts(testRecord(core.ErrorLevel, "above")) {
		t.Error("Expected ERROR record above the band to be rejected")
	}
}

func TestStructuredHandler_Stream(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewStructuredHandler(StructuredConfig{
		Writer: &buf,
	})
	if err != nil {
		t.Fatalf("NewStructuredHandler() error = %v", err)
	}
	defer h.Close()

	rec := testRecord(core.InfoLevel, "structured message")
	rec.Fields = append(rec.Fields, core.Field{Key: "k", Type: core.StringType, Str: "v"})

	if err := h.Emit(rec); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}
	if data["message"] != "structured message" {
		t.Errorf("Expected message in JSON output, got: %v", data["message"])
	}
}

func TestStructuredHandler_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.jsonl")

	h, err := NewStructuredHandler(StructuredConfig{
		Filename: path,
	})
	if err != nil {
		t.Fatalf("NewStructuredHandler() error = %v", err)
	}

	if err := h.Emit(testRecord(core.InfoLevel, "to file")); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), `"message":"to file"`) {
		t.Errorf("Expected message in file, got: %s", data)
	}
}

func TestStructuredHandler_RequiresTarget(t *testing.T) {
	_, err := NewStructuredHandler(StructuredConfig{})
	if err == nil {
		t.Fatal("Expected error when neither filename nor writer is set")
	}
}
