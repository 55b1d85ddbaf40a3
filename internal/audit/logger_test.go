package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoggerWritesJSONLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l := NewLogger(path)
	l.nowFunc = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }

	if err := l.Log("ada@synaphack.dev", "organizer", "event.publish", "ev-1", "success", ""); err != nil {
		t.Fatalf("Log() error: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	line := strings.TrimSpace(string(b))
	if line == "" {
		t.Fatalf("expected non-empty audit line")
	}
	var e Event
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		t.Fatalf("decode audit line: %v", err)
	}
	if e.Actor != "ada@synaphack.dev" || e.Role != "organizer" || e.Action != "event.publish" || e.Outcome != "success" {
		t.Fatalf("unexpected audit event content: %+v", e)
	}
	if e.At != "2026-08-30T12:00:00Z" {
		t.Fatalf("expected fixed timestamp, got %q", e.At)
	}
}

func TestLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l := NewLogger(path)

	if err := l.Log("a@synaphack.dev", "participant", "team.join", "t-1", "success", ""); err != nil {
		t.Fatalf("Log() first error: %v", err)
	}
	if err := l.Log("b@synaphack.dev", "judge", "submission.score", "s-1", "failed", "already scored"); err != nil {
		t.Fatalf("Log() second error: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 audit lines, got %d", len(lines))
	}
}

func TestNilLoggerIsNoOp(t *testing.T) {
	var l *Logger
	if err := l.Log("x", "y", "z", "", "success", ""); err != nil {
		t.Fatalf("expected nil logger to be a no-op, got %v", err)
	}
}
