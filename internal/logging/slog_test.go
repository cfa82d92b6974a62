package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestWithOperation(t *testing.T) {
	logger := slog.Default()
	result := WithOperation(logger, "test_operation")
	if result == nil {
		t.Error("WithOperation returned nil")
	}
}

func TestWithTool(t *testing.T) {
	logger := slog.Default()
	result := WithTool(logger, "test_tool")
	if result == nil {
		t.Error("WithTool returned nil")
	}
}

func TestWithBackend(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	WithBackend(logger, "file").Info("loaded")

	if !strings.Contains(buf.String(), "backend=file") {
		t.Errorf("expected backend attribute in %q", buf.String())
	}
}

func TestAttrHelpers(t *testing.T) {
	tests := []struct {
		name    string
		attr    slog.Attr
		wantKey string
		wantVal string
	}{
		{"operation", Operation("availability.save"), KeyOperation, "availability.save"},
		{"backend", Backend("redis"), KeyBackend, "redis"},
		{"tool", Tool("availability_summary"), KeyTool, "availability_summary"},
		{"status", Status(StatusSuccess), KeyStatus, "success"},
		{"count", Count(3), KeyCount, "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.wantKey {
				t.Errorf("key = %q, want %q", tt.attr.Key, tt.wantKey)
			}
			if tt.attr.Value.String() != tt.wantVal {
				t.Errorf("value = %q, want %q", tt.attr.Value.String(), tt.wantVal)
			}
		})
	}
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("boom"))
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "boom" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "boom")
	}
}

func TestErr_Nil(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("ok", Err(nil))

	if strings.Contains(buf.String(), KeyError+"=") {
		t.Errorf("nil error should be omitted, got %q", buf.String())
	}
}

func TestAnonymizeName(t *testing.T) {
	if got := AnonymizeName(""); got != "" {
		t.Errorf("AnonymizeName(\"\") = %q, want empty", got)
	}

	a := AnonymizeName("Alice")
	if !strings.HasPrefix(a, "user:") {
		t.Errorf("AnonymizeName should have user: prefix, got %q", a)
	}
	if strings.Contains(a, "Alice") {
		t.Errorf("AnonymizeName leaked the name: %q", a)
	}
	if a != AnonymizeName("Alice") {
		t.Error("AnonymizeName should be deterministic")
	}
	if a == AnonymizeName("alice") {
		t.Error("AnonymizeName should be case-sensitive like user names")
	}
}

func TestUserHash(t *testing.T) {
	attr := UserHash("Bob")
	if attr.Key != KeyUserHash {
		t.Errorf("UserHash key = %q, want %q", attr.Key, KeyUserHash)
	}
	if attr.Value.String() != AnonymizeName("Bob") {
		t.Errorf("UserHash value = %q, want %q", attr.Value.String(), AnonymizeName("Bob"))
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "debug", FormatJSON)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Debug("hello", "k", "v")
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("expected JSON output, got %q", buf.String())
	}

	buf.Reset()
	logger, err = NewLogger(&buf, "warn", FormatText)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}

	if _, err := NewLogger(&buf, "info", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
