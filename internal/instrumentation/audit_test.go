package instrumentation

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/teemow/teamdates/internal/logging"
)

const (
	testUser     = "Alice"
	testToolSave = "availability_save"
)

func TestToolInvocation_NewAndComplete(t *testing.T) {
	ti := NewToolInvocation(testToolSave)

	if ti.Tool != testToolSave {
		t.Errorf("Tool = %q, want %q", ti.Tool, testToolSave)
	}
	if ti.StartTime.IsZero() {
		t.Error("StartTime should not be zero")
	}

	ti.CompleteSuccess()
	if !ti.Success {
		t.Error("Success should be true")
	}
	if ti.Status() != StatusSuccess {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusSuccess)
	}
}

func TestToolInvocation_CompleteWithError(t *testing.T) {
	ti := NewToolInvocation(testToolSave).CompleteWithError(errors.New("disk full"))

	if ti.Success {
		t.Error("Success should be false")
	}
	if ti.Error != "disk full" {
		t.Errorf("Error = %q, want %q", ti.Error, "disk full")
	}
	if ti.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", ti.Status(), StatusError)
	}
}

func TestToolInvocation_LogAttrs(t *testing.T) {
	ti := NewToolInvocation(testToolSave).
		WithUser(testUser).
		WithOperation("save").
		WithCount(2).
		CompleteSuccess()

	attrs := attrMap(ti.LogAttrs())
	if _, ok := attrs["user"]; ok {
		t.Error("LogAttrs must not include the clear-text user")
	}
	if attrs[logging.KeyUserHash] != logging.AnonymizeName(testUser) {
		t.Errorf("user_hash = %v, want %v", attrs[logging.KeyUserHash], logging.AnonymizeName(testUser))
	}
	if attrs["operation"] != "save" {
		t.Errorf("operation = %v, want save", attrs["operation"])
	}
	if attrs["count"] != int64(2) {
		t.Errorf("count = %v, want 2", attrs["count"])
	}

	audit := attrMap(ti.LogAuditAttrs())
	if audit["user"] != testUser {
		t.Errorf("audit user = %v, want %v", audit["user"], testUser)
	}
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	tests := []struct {
		name       string
		config     AuditLoggingConfig
		success    bool
		wantOutput []string
		wantAbsent []string
	}{
		{
			name:       "anonymized success",
			config:     AuditLoggingConfig{Enabled: true},
			success:    true,
			wantOutput: []string{"tool_executed", "user_hash=" + logging.AnonymizeName(testUser)},
			wantAbsent: []string{"user=Alice"},
		},
		{
			name:       "pii failure",
			config:     AuditLoggingConfig{Enabled: true, IncludePII: true},
			success:    false,
			wantOutput: []string{"tool_failed", "user=Alice"},
		},
		{
			name:       "disabled",
			config:     AuditLoggingConfig{Enabled: false},
			success:    true,
			wantAbsent: []string{"tool_executed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			al := NewAuditLoggerWithConfig(slog.New(slog.NewTextHandler(&buf, nil)), tt.config)

			ti := NewToolInvocation(testToolSave).WithUser(testUser)
			if tt.success {
				ti.CompleteSuccess()
			} else {
				ti.CompleteWithError(errors.New("failed"))
			}
			al.LogToolInvocation(ti)

			out := buf.String()
			for _, want := range tt.wantOutput {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in %q", want, out)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(out, absent) {
					t.Errorf("did not expect %q in %q", absent, out)
				}
			}
		})
	}
}

func TestAuditLogger_LogToolAudit(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	al.LogToolAudit(NewToolInvocation(testToolSave).WithUser(testUser).CompleteSuccess())

	if !strings.Contains(buf.String(), "tool_audit") || !strings.Contains(buf.String(), "user=Alice") {
		t.Errorf("unexpected audit output %q", buf.String())
	}
}

func TestAuditLogger_Nil(t *testing.T) {
	var al *AuditLogger
	al.LogToolInvocation(NewToolInvocation(testToolSave).CompleteSuccess())
	al.LogToolAudit(NewToolInvocation(testToolSave).CompleteSuccess())
}

func attrMap(attrs []slog.Attr) map[string]interface{} {
	m := make(map[string]interface{}, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value.Any()
	}
	return m
}
