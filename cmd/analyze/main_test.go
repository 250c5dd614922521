package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/guessgame/game/engine"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name         string
		cfg          engine.GameConfig
		wantSize     int
		wantWorst    int
		wantSchedule []HintStep
	}{
		{
			name:      "defaults",
			cfg:       engine.DefaultConfig(),
			wantSize:  100,
			wantWorst: 7,
			wantSchedule: []HintStep{
				{Miss: 5, Kind: engine.HintParity},
			},
		},
		{
			name:      "frequent hints",
			cfg:       engine.GameConfig{MinRange: 1, MaxRange: 1000, HintTriggerCount: 3},
			wantSize:  1000,
			wantWorst: 10,
			wantSchedule: []HintStep{
				{Miss: 3, Kind: engine.HintParity},
				{Miss: 6, Kind: engine.HintRange},
				{Miss: 9, Kind: engine.HintRange},
			},
		},
		{
			name:      "hints never reached",
			cfg:       engine.GameConfig{MinRange: 0, MaxRange: 9, HintTriggerCount: 5},
			wantSize:  10,
			wantWorst: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := analyze(tt.cfg)
			if a.Size != tt.wantSize || a.WorstCase != tt.wantWorst {
				t.Errorf("Expected size %d worst %d, got %d %d", tt.wantSize, tt.wantWorst, a.Size, a.WorstCase)
			}
			if len(a.HintSchedule) != len(tt.wantSchedule) {
				t.Fatalf("Expected schedule %v, got %v", tt.wantSchedule, a.HintSchedule)
			}
			for i, step := range tt.wantSchedule {
				if a.HintSchedule[i] != step {
					t.Errorf("Step %d: expected %v, got %v", i, step, a.HintSchedule[i])
				}
			}
		})
	}
}

func TestSimulate(t *testing.T) {
	cfg := engine.GameConfig{MinRange: 1, MaxRange: 100, HintTriggerCount: 2}

	stats, err := simulate(cfg, 0)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	if stats.Games != 100 {
		t.Errorf("Expected 100 games, got %d", stats.Games)
	}
	if stats.MinAttempts != 1 {
		t.Errorf("Expected one secret found on the first guess, got min %d", stats.MinAttempts)
	}
	if stats.MaxAttempts > 7 {
		t.Errorf("Expected at most 7 attempts, got %d", stats.MaxAttempts)
	}
	if stats.GamesHinted == 0 {
		t.Error("Expected some games to receive hints")
	}

	t.Run("sampling caps games", func(t *testing.T) {
		big := engine.GameConfig{MinRange: 1, MaxRange: 100000, HintTriggerCount: 5}
		stats, err := simulate(big, 50)
		if err != nil {
			t.Fatalf("simulate failed: %v", err)
		}
		if stats.Games > 50 {
			t.Errorf("Expected at most 50 games, got %d", stats.Games)
		}
	})
}

func TestCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game-config.json")
	if err := os.WriteFile(path, []byte(`{"min_range": 1, "max_range": 64, "hint_trigger_count": 2}`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	var out bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &out
	if err := cmd.Run(context.Background(), []string{"analyze", "--simulate", path}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, want := range []string{"Range: 1-64 (64 numbers)", "Worst case with bisection: 7 guesses", "after miss 2: parity hint", "Simulated 64 games"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in output:\n%s", want, out.String())
		}
	}

	t.Run("missing file", func(t *testing.T) {
		cmd := newCommand()
		cmd.Writer = &bytes.Buffer{}
		if err := cmd.Run(context.Background(), []string{"analyze", filepath.Join(dir, "nope.json")}); err == nil {
			t.Error("Expected error for missing file")
		}
	})
}
