package main

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/wricardo/mcp-training/guessgame/api"
	"github.com/wricardo/mcp-training/guessgame/game/config"
	"github.com/wricardo/mcp-training/guessgame/game/engine"
	"github.com/wricardo/mcp-training/guessgame/game/history"
	"github.com/wricardo/mcp-training/guessgame/game/service"
	"github.com/wricardo/mcp-training/guessgame/game/session"
)

func setupTestServer(t *testing.T, secret int, patch engine.ConfigPatch) (*httptest.Server, service.GameService) {
	t.Helper()

	configs, err := config.NewManager(filepath.Join(t.TempDir(), "game-config.json"))
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	if !patch.IsEmpty() {
		if _, err := configs.Update(patch); err != nil {
			t.Fatalf("Failed to update config: %v", err)
		}
	}

	sessions := session.NewManager(session.WithSecretSource(session.FixedSecret(secret)))
	svc := service.NewGameService(sessions, configs, history.NewRecorder(history.NewMemoryStore()))

	server := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(server.Close)
	return server, svc
}

func intPtr(v int) *int { return &v }

func TestPlayGame(t *testing.T) {
	tests := []struct {
		name      string
		secret    int
		patch     engine.ConfigPatch
		wantWorst int
	}{
		{"default range, secret at the edge", 1, engine.ConfigPatch{}, 7},
		{"default range, middle", 50, engine.ConfigPatch{}, 7},
		{"frequent hints", 73, engine.ConfigPatch{HintTriggerCount: intPtr(1)}, 7},
		{"wide range", 777, engine.ConfigPatch{MaxRange: intPtr(1000), HintTriggerCount: intPtr(2)}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := setupTestServer(t, tt.secret, tt.patch)
			client := NewClient(server.URL + "/")

			report, err := playGame(client, 0)
			if err != nil {
				t.Fatalf("playGame failed: %v", err)
			}
			if report.WorstCase != tt.wantWorst {
				t.Errorf("Expected worst case %d, got %d", tt.wantWorst, report.WorstCase)
			}
			if report.Attempts < 1 || report.Attempts > report.WorstCase {
				t.Errorf("Attempts %d outside [1, %d]", report.Attempts, report.WorstCase)
			}
		})
	}
}

func TestSaveMatch(t *testing.T) {
	server, svc := setupTestServer(t, 42, engine.ConfigPatch{})
	client := NewClient(server.URL)

	report, err := playGame(client, 0)
	if err != nil {
		t.Fatalf("playGame failed: %v", err)
	}

	rating := difficulty(report.Attempts, report.WorstCase)
	rec, err := client.SaveMatch(report.GameID, &rating)
	if err != nil {
		t.Fatalf("SaveMatch failed: %v", err)
	}
	if rec.Attempts != report.Attempts || *rec.DifficultyRating != rating {
		t.Errorf("Unexpected record: %+v", rec)
	}

	stored, err := svc.GetMatch(context.Background(), report.GameID)
	if err != nil || stored.HistoryID != rec.HistoryID {
		t.Errorf("Expected stored match, got %+v (%v)", stored, err)
	}

	_, err = client.SaveMatch(report.GameID, nil)
	var apiErr *apiError
	if !errors.As(err, &apiErr) || apiErr.status != 409 {
		t.Errorf("Expected 409 on duplicate save, got %v", err)
	}
}

func TestClientErrors(t *testing.T) {
	server, _ := setupTestServer(t, 42, engine.ConfigPatch{})
	client := NewClient(server.URL)

	_, err := client.Guess("missing", 5)
	var apiErr *apiError
	if !errors.As(err, &apiErr) || apiErr.status != 404 {
		t.Errorf("Expected 404 for unknown game, got %v", err)
	}

	info, err := client.StartGame()
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	_, err = client.Guess(info.ID, 1000)
	if !errors.As(err, &apiErr) || apiErr.status != 400 {
		t.Errorf("Expected 400 for out-of-range guess, got %v", err)
	}
}

func TestDifficulty(t *testing.T) {
	tests := []struct {
		attempts, worst, want int
	}{
		{1, 7, 1},
		{4, 7, 3},
		{7, 7, 5},
		{9, 7, 5},
		{3, 0, 1},
	}

	for _, tt := range tests {
		if got := difficulty(tt.attempts, tt.worst); got != tt.want {
			t.Errorf("difficulty(%d, %d) = %d, want %d", tt.attempts, tt.worst, got, tt.want)
		}
	}
}
