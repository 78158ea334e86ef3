package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestInitSetsLevel(t *testing.T) {
	if err := Init("debug", false); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	defer func() { _ = Init("info", false) }()

	if !Logger().Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug level to be enabled")
	}
}

func TestInitFallsBackToInfoOnBadLevel(t *testing.T) {
	if err := Init("not-a-level", false); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	defer func() { _ = Init("info", false) }()

	if Logger().Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug level to be disabled after fallback")
	}
	if !Logger().Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("expected info level to be enabled after fallback")
	}
}

func TestWithModuleNeverNil(t *testing.T) {
	if WithModule("results") == nil {
		t.Fatal("expected a usable child logger")
	}
}
