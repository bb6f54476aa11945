package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestScrub(t *testing.T) {
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig"
	out := scrub([]interface{}{
		"access_token", "abc",
		"Email", "a@b.c",
		"header", jwt,
		"user_id", "5f0c",
		"dangling",
	})

	want := []interface{}{"access_token", redacted, "Email", redacted, "header", redacted, "user_id", "5f0c", "dangling"}
	if len(out) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(out))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("value %d: expected %v, got %v", i, want[i], out[i])
		}
	}
}

func TestScrub_LeavesInputUntouched(t *testing.T) {
	in := []interface{}{"password", "hunter2"}
	_ = scrub(in)
	if in[1] != "hunter2" {
		t.Fatalf("expected caller slice to be unchanged, got %v", in[1])
	}
}

func TestLoggerRedactsFields(t *testing.T) {
	l, logs := observed()
	l.With("secret", "s3cr3t").Info("skill created", "skill_id", "x", "password", "p")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["secret"] != redacted || fields["password"] != redacted {
		t.Fatalf("expected secrets to be redacted, got %v", fields)
	}
	if fields["skill_id"] != "x" {
		t.Fatalf("expected skill_id to pass through, got %v", fields["skill_id"])
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Info("ignored", "k", "v")
	l.Sync()
	if l.With("k", "v") != nil {
		t.Fatalf("expected nil logger from nil receiver")
	}
	Nop().Info("ignored")
}
