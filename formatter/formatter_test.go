package formatter

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fieldline/logpipe/core"
)

func TestTextFormatter_Basic(t *testing.T) {
	f := NewTextFormatter(Config{})

	record := &core.Record{
		Time:    time.Date(2026, 2, 18, 13, 0, 0, 0, time.UTC),
		Logger:  "app",
		Level:   core.InfoLevel,
		Message: "test message",
	}

	result, err := f.Format(record)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := string(result)
	if !strings.Contains(output, "[INFO]") {
		t.Errorf("Expected '[INFO]' in output, got: %s", output)
	}
	if !strings.Contains(output, "app: ") {
		t.Errorf("Expected logger name in output, got: %s", output)
	}
	if !strings.Contains(output, "test message") {
		t.Errorf("Expected 'test message' in output, got: %s", output)
	}
}

func TestTextFormatter_WithFields(t *testing.T) {
	f := NewTextFormatter(Config{})

	record := &core.Record{
		Time:    time.Now(),
		Level:   core.InfoLevel,
		Message: "test",
		Fields: []core.Field{
			{Key: "key1", Type: core.StringType, Str: "value1"},
			{Key: "key2", Type: core.IntType, Int64: 42},
		},
	}

	result, err := f.Format(record)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := string(result)
	if !strings.Contains(output, "key1=value1") {
		t.Errorf("Expected 'key1=value1' in output, got: %s", output)
	}
	if !strings.Contains(output, "key2=42") {
		t.Errorf("Expected 'key2=42' in output, got: %s", output)
	}
}

func TestTextFormatter_Color(t *testing.T) {
	f := NewTextFormatter(Config{})
	f.SetColor(true)

	record := &core.Record{
		Time:    time.Now(),
		Level:   core.ErrorLevel,
		Message: "boom",
	}

	result, err := f.Format(record)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := string(result)
	if !strings.Contains(output, "\x1b[") {
		t.Errorf("Expected ANSI escape codes in colourized output, got: %q", output)
	}

	f.SetColor(false)
	result, err = f.Format(record)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.Contains(string(result), "\x1b[") {
		t.Errorf("Expected no ANSI escape codes after disabling colour, got: %q", result)
	}
}

func TestTextFormatter_Error(t *testing.T) {
	f := NewTextFormatter(Config{})

	record := &core.Record{
		Time:    time.Now(),
		Level:   core.ErrorLevel,
		Message: "request failed",
		Err:     "connection refused",
	}

	result, err := f.Format(record)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if !strings.Contains(string(result), "error=connection refused") {
		t.Errorf("Expected error context in output, got: %s", result)
	}
}

func TestJSONFormatter_Basic(t *testing.T) {
	f := NewJSONFormatter(Config{})

	record := &core.Record{
		Time:    time.Date(2026, 2, 18, 13, 0, 0, 0, time.UTC),
		Logger:  "app",
		Level:   core.InfoLevel,
		Message: "test message",
	}

	result, err := f.Format(record)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	// Verify it's valid JSON
	var data map[string]interface{}
	if err := json.Unmarshal(result, &data); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	if data["level"] != "INFO" {
		t.Errorf("Expected level 'INFO', got: %v", data["level"])
	}
	if data["logger"] != "app" {
		t.Errorf("Expected logger 'app', got: %v", data["logger"])
	}
	if data["message"] != "test message" {
		t.Errorf("Expected message 'test message', got: %v", data["message"])
	}
}

// Serialize-then-parse must yield the same logical fields.
func TestJSONFormatter_RoundTrip(t *testing.T) {
	f := NewJSONFormatter(Config{})

	ts := time.Date(2026, 2, 18, 13, 0, 0, 123456789, time.UTC)
	record := &core.Record{
		Time:    ts,
		Logger:  "db",
		Level:   core.WarnLevel,
		Message: "slow query",
		Fields: []core.Field{
			{Key: "str", Type: core.StringType, Str: "value"},
			{Key: "int", Type: core.IntType, Int64: 42},
			{Key: "bool", Type: core.BoolType, Int64: 1},
			{Key: "float", Type: core.Float64Type, Float64: 2.5},
		},
		Err: "deadline exceeded",
	}

	result, err := f.Format(record)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(result, &data); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	parsedTime, err := time.Parse(time.RFC3339Nano, data["timestamp"].(string))
	if err != nil {
		t.Fatalf("Invalid timestamp: %v", err)
	}
	if !parsedTime.Equal(ts) {
		t.Errorf("Expected timestamp %v, got %v", ts, parsedTime)
	}
	if data["level"] != "WARN" {
		t.Errorf("Expected level 'WARN', got: %v", data["level"])
	}
	if data["logger"] != "db" {
		t.Errorf("Expected logger 'db', got: %v", data["logger"])
	}
	if data["message"] != "slow query" {
		t.Errorf("Expected message 'slow query', got: %v", data["message"])
	}
	if data["error"] != "deadline exceeded" {
		t.Errorf("Expected error 'deadline exceeded', got: %v", data["error"])
	}

	payload, ok := data["payload"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected payload object in JSON")
	}
	if payload["str"] != "value" {
		t.Errorf("Expected str='value', got: %v", payload["str"])
	}
	if payload["int"] != float64(42) { // JSON numbers are float64
		t.Errorf("Expected int=42, got: %v", payload["int"])
	}
	if payload["bool"] != true {
		t.Errorf("Expected bool=true, got: %v", payload["bool"])
	}
	if payload["float"] != 2.5 {
		t.Errorf("Expected float=2.5, got: %v", payload["float"])
	}
}

func TestJSONFormatter_Escaping(t *testing.T) {
	f := NewJSONFormatter(Config{})

	record := &core.Record{
		Time:    time.Now(),
		Logger:  "app",
		Level:   core.InfoLevel,
		Message: "line1\nline2 \"quoted\" tab\there",
	}

	result, err := f.Format(record)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(result, &data); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	if data["message"] != "line1\nline2 \"quoted\" tab\there" {
		t.Errorf("Escaping did not round-trip, got: %q", data["message"])
	}
}

func BenchmarkTextFormatter(b *testing.B) {
	f := NewTextFormatter(Config{})
	record := &core.Record{
		Time:    time.Now(),
		Logger:  "app",
		Level:   core.InfoLevel,
		Message: "test message",
		Fields: []core.Field{
			{Key: "key1", Type: core.StringType, Str: "value1"},
			{Key: "key2", Type: core.IntType, Int64: 42},
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = f.Format(record)
	}
}

func BenchmarkJSONFormatter(b *testing.B) {
	f := NewJSONFormatter(Config{})
	record := &core.Record{
		Time:    time.Now(),
		Logger:  "app",
		Level:   core.InfoLevel,
		Message: "test message",
		Fields: []core.Field{
			{Key: "key1", Type: core.StringType, Str: "value1"},
			{Key: "key2", Type: core.IntType, Int64: 42},
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = f.Format(record)
	}
}
