package utils

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLoggerLevels(t *testing.T) {
	ctx := context.Background()

	debug := NewLogger("debug", false)
	if !debug.Enabled(ctx, slog.LevelDebug) {
		t.Fatalf("debug logger should emit debug records")
	}

	warn := NewLogger("WARN", true)
	if warn.Enabled(ctx, slog.LevelInfo) {
		t.Fatalf("warn logger should suppress info records")
	}
	if !warn.Enabled(ctx, slog.LevelWarn) {
		t.Fatalf("warn logger should emit warn records")
	}
}

func TestNewLoggerUnknownLevelFallsBackToInfo(t *testing.T) {
	ctx := context.Background()

	logger := NewLogger("nonsense", false)
	if !logger.Enabled(ctx, slog.LevelInfo) {
		t.Fatalf("unknown level should fall back to info")
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		t.Fatalf("unknown level must not enable debug")
	}
}
