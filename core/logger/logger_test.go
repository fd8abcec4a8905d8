package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_WithFields(t *testing.T) {
	l, err := New(Config{Level: "debug", OutputPaths: []string{t.TempDir() + "/out.log"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.With(String("component", "test")).Info("hello", Int("n", 1))
	_ = l.Sync()
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.With(String("a", "b")).Error("ignored")
	if err := l.Sync(); err != nil {
		t.Errorf("Sync = %v, want nil", err)
	}
}
