package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line %q is not JSON: %v", line, err)
	}
	return entry
}

func TestLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "catalog refreshed",
		Field{Key: "server_id", Value: "search"},
		Field{Key: "tool_count", Value: 3},
	)

	entry := logLine(t, &buf)
	if entry["level"] != "info" || entry["msg"] != "catalog refreshed" {
		t.Errorf("entry = %v", entry)
	}
	if entry["server_id"] != "search" {
		t.Errorf("server_id = %v, want search", entry["server_id"])
	}
	if entry["timestamp"] == nil {
		t.Error("entry has no timestamp")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)

	logger.Debug(context.Background(), "dropped")
	logger.Info(context.Background(), "dropped")
	if buf.Len() != 0 {
		t.Errorf("below-level entries written: %s", buf.String())
	}

	logger.Warn(context.Background(), "kept")
	if buf.Len() == 0 {
		t.Error("warn entry not written")
	}
}

func TestLogger_RedactsCredentialFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "auth state",
		Field{Key: "credential", Value: "raw-bearer-token"},
		Field{Key: "claims", Value: "sub=user-1"},
		Field{Key: "path", Value: "/call"},
	)

	out := buf.String()
	if strings.Contains(out, "raw-bearer-token") || strings.Contains(out, "sub=user-1") {
		t.Fatalf("log leaked credential material: %s", out)
	}

	entry := logLine(t, &buf)
	if entry["credential"] != "[REDACTED]" || entry["claims"] != "[REDACTED]" {
		t.Errorf("redacted fields = %v / %v", entry["credential"], entry["claims"])
	}
	if entry["path"] != "/call" {
		t.Errorf("non-sensitive field altered: %v", entry["path"])
	}
}

func TestLogger_WithCall(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	called := logger.WithCall(CallMeta{
		Operation: "get_object",
		ServerID:  "search",
		TenantID:  "acme",
		RequestID: "req-1",
	})
	called.Info(context.Background(), "dispatching")

	entry := logLine(t, &buf)
	if entry["call.operation"] != "get_object" {
		t.Errorf("call.operation = %v", entry["call.operation"])
	}
	if entry["tenant.id"] != "acme" || entry["request.id"] != "req-1" {
		t.Errorf("call attrs = %v", entry)
	}
	if entry["remote.server"] != "search" {
		t.Errorf("remote.server = %v", entry["remote.server"])
	}

	// The parent logger is untouched.
	buf.Reset()
	logger.Info(context.Background(), "plain")
	entry = logLine(t, &buf)
	if _, ok := entry["call.operation"]; ok {
		t.Error("WithCall() mutated the parent logger")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
