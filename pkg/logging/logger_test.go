package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

func newTestLogger(buf *bytes.Buffer, level Level, format Format) *StreamLogger {
	l := New(buf, level, format)
	l.now = fixedClock
	return l
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"WARNING", WarnLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
		{"", InfoLevel},
		{"invalid", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, InfoLevel, JSONFormat)

	logger.Info("analysis complete", Tree("random1.xml"), Count(7))

	var e entry
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if e.Level != "INFO" || e.Message != "analysis complete" {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.Fields["tree"] != "random1.xml" {
		t.Errorf("tree field = %v", e.Fields["tree"])
	}
	// numbers decode as float64
	if e.Fields["count"] != float64(7) {
		t.Errorf("count field = %v", e.Fields["count"])
	}
	if e.Time != "2026-01-02T03:04:05Z" {
		t.Errorf("time = %s", e.Time)
	}
}

func TestTextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, DebugLevel, TextFormat)

	logger.Debug("phase done", Phase("witness"), Count(3))

	want := "2026-01-02T03:04:05Z DEBUG phase done count=3 phase=witness\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, WarnLevel, JSONFormat)

	logger.Debug("hidden")
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below WARN, got %s", buf.String())
	}

	logger.Warn("shown")
	logger.Error("shown", Error(errors.New("boom")))
	if lines := strings.Count(buf.String(), "\n"); lines != 2 {
		t.Errorf("expected 2 lines, got %d", lines)
	}

	logger.SetLevel(DebugLevel)
	if logger.GetLevel() != DebugLevel {
		t.Errorf("GetLevel = %v", logger.GetLevel())
	}
}

func TestWith_ChildInheritsFields(t *testing.T) {
	var buf bytes.Buffer
	parent := newTestLogger(&buf, InfoLevel, JSONFormat)
	child := parent.With(Component("semantics"), RunID("r1"))

	child.Info("hello", Label("a1"))

	var e entry
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatal(err)
	}
	for key, want := range map[string]string{"component": "semantics", "run_id": "r1", "label": "a1"} {
		if e.Fields[key] != want {
			t.Errorf("field %s = %v, want %s", key, e.Fields[key], want)
		}
	}

	buf.Reset()
	parent.Info("plain")
	if strings.Contains(buf.String(), "semantics") {
		t.Error("parent picked up child fields")
	}
}

func TestErrorField(t *testing.T) {
	if f := Error(nil); f.Value != nil {
		t.Errorf("Error(nil) = %+v", f)
	}
	if f := Error(errors.New("x")); f.Key != "error" || f.Value != "x" {
		t.Errorf("Error(x) = %+v", f)
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, DebugLevel, JSONFormat)

	op := StartTimer(logger, "evaluate", Domain("count-strategies"))
	if d := op.End(Count(2)); d < 0 {
		t.Errorf("negative duration %v", d)
	}

	var e entry
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.Fields["latency"]; !ok {
		t.Error("latency field missing")
	}
	if e.Fields["domain"] != "count-strategies" {
		t.Errorf("domain = %v", e.Fields["domain"])
	}

	buf.Reset()
	op.EndError(errors.New("failed"))
	if !strings.Contains(buf.String(), `"error":"failed"`) {
		t.Errorf("missing error field: %s", buf.String())
	}
}

func TestDefaultLogger(t *testing.T) {
	original := DefaultLogger()
	defer SetDefaultLogger(original)

	nop := NopLogger{}
	SetDefaultLogger(nop)
	if DefaultLogger() != Logger(nop) {
		t.Error("SetDefaultLogger did not take effect")
	}
}
