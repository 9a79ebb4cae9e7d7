package logging_test

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"peaklab/internal/platform/logging"
)

func TestParseLevelFallsBackToInfo(t *testing.T) {
	t.Parallel()
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := logging.ParseLevel(in); got != want {
			t.Fatalf("level %q: expected %s, got %s", in, want, got)
		}
	}
}

func TestNewHonoursLevel(t *testing.T) {
	t.Parallel()
	logger, err := logging.New(logging.WithLevel("warn"), logging.WithFields(map[string]any{"app": "peaklab"}))
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info must be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("error must be enabled at warn level")
	}
}

func TestDevelopmentKeepsLevel(t *testing.T) {
	t.Parallel()
	logger, err := logging.New(logging.WithLevel("error"), logging.WithDevelopment(true))
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if logger.Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("development mode must not reset the level")
	}
}
