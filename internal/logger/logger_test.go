package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer, format string) *Logger {
	return New(Options{Level: "debug", Format: format, Output: buf, ServiceName: "socialkit-test"})
}

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, "json")

	ctx := l.WithContext(context.Background())
	ctx = SetSessionID(ctx, "sess-1")
	ctx = WithFields(ctx, Fields{FieldPlatformID: "ig-square"})

	With(Fields{FieldProgress: 50}).Info(ctx, "Item %d done", 1)

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	checks := map[string]interface{}{
		"service":       "socialkit-test",
		FieldSessionID:  "sess-1",
		FieldPlatformID: "ig-square",
		"message":       "Item 1 done",
		FieldProgress:   float64(50),
	}
	for k, want := range checks {
		if line[k] != want {
			t.Errorf("field %s = %v, want %v", k, line[k], want)
		}
	}

	if got := GetSessionID(ctx); got != "sess-1" {
		t.Errorf("GetSessionID = %q", got)
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) != GetDefault() {
		t.Error("expected default logger for empty context")
	}
	if FromContext(nil) != GetDefault() {
		t.Error("expected default logger for nil context")
	}
}

func TestTextFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "warn", Format: "text", Output: &buf})

	l.Info("hidden")
	l.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, "visible") || !strings.Contains(out, "service=socialkit") {
		t.Errorf("unexpected text output: %s", out)
	}
}
