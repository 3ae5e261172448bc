package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLevelFromString(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := levelFromString(in); got != want {
			t.Errorf("levelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew(t *testing.T) {
	for _, dev := range []bool{false, true} {
		l, err := New("warn", dev)
		if err != nil {
			t.Fatalf("New(dev=%v) returned error: %v", dev, err)
		}
		if l.Core().Enabled(zapcore.InfoLevel) {
			t.Errorf("dev=%v: info should be disabled at warn level", dev)
		}
		if !l.Core().Enabled(zapcore.ErrorLevel) {
			t.Errorf("dev=%v: error should be enabled at warn level", dev)
		}
	}
}
