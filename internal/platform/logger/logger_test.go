package logger

import (
	"strings"
	"testing"
)

func TestSanitizeRedactsSecrets(t *testing.T) {
	l := Nop()
	l.redact = redaction{enabled: true}

	out := l.sanitizeKVs([]interface{}{"openai_api_key", "sk-123", "service", "openai", "user_id", "u-1", "dangling"})
	if len(out) != 7 {
		t.Fatalf("unexpected len: %d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("api key not redacted: %v", out[1])
	}
	if out[3] != "openai" {
		t.Fatalf("plain value changed: %v", out[3])
	}
	if s, _ := out[5].(string); !strings.HasPrefix(s, "hash:") {
		t.Fatalf("user id not hashed: %v", out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("odd trailing key dropped: %v", out[6])
	}
}

func TestSanitizeDisabled(t *testing.T) {
	l := Nop()
	kv := []interface{}{"token", "abc"}
	out := l.sanitizeKVs(kv)
	if out[1] != "abc" {
		t.Fatalf("expected passthrough when redaction is off, got %v", out[1])
	}
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"production", "development", "test"} {
		l, err := New(mode, WithLevel("info"), WithRedaction(true, "salt"))
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		l.With("component", "test").Info("hello", "api_key", "x")
	}
}
