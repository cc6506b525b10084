package cli

import (
	"log/slog"
	"testing"

	"kakeibo/internal/config"
	"kakeibo/internal/log"
)

func TestSetupLoggerLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger("warn")
	if logger.Enabled(t.Context(), slog.LevelInfo) {
		t.Errorf("info should be disabled at warn level")
	}
	if !logger.Enabled(t.Context(), slog.LevelWarn) {
		t.Errorf("warn should be enabled at warn level")
	}
	if got := logger.Component(); got != log.ComponentApp {
		t.Errorf("component = %q, want %q", got, log.ComponentApp)
	}
}

func TestInitPresetsDisabled(t *testing.T) {
	if repo := InitPresets(log.New(log.DefaultConfig()), ""); repo != nil {
		t.Fatalf("expected nil repository when presets are disabled")
	}
}

func TestInitPublisherDisabled(t *testing.T) {
	if client := InitPublisher(log.New(log.DefaultConfig()), &config.Config{}); client != nil {
		t.Fatalf("expected nil publisher without an AMQP URL")
	}
}
