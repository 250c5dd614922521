package obslog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "game.log")

	logger, err := New(Options{Level: "info", Format: "json", File: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info("game started", zap.String("game_id", "abc"))
	logger.Debug("dropped at info level")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"game started"`) || !strings.Contains(out, `"game_id":"abc"`) {
		t.Errorf("Expected structured entry, got %s", out)
	}
	if strings.Contains(out, "dropped") {
		t.Error("Debug entry should be filtered at info level")
	}
}

func TestSet(t *testing.T) {
	prev := L()
	defer Set(prev)

	logger := zap.NewExample()
	Set(logger)
	if L() != logger {
		t.Error("Expected Set to replace the global logger")
	}

	Set(nil)
	if L() == nil {
		t.Error("Set(nil) must install a no-op logger")
	}
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_FILE", "")

	opts := OptionsFromEnv()
	if opts.Level != "debug" || opts.Format != "json" || opts.File != "" {
		t.Errorf("Unexpected options: %+v", opts)
	}
}
