package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/wricardo/mcp-training/guessgame/game/engine"
)

func TestManager_Create(t *testing.T) {
	manager := NewManager()

	t.Run("create with generated ID", func(t *testing.T) {
		game, err := manager.Create(1, 100)
		if err != nil {
			t.Fatalf("Failed to create game: %v", err)
		}
		if game.ID() == "" {
			t.Error("Expected generated ID, got empty string")
		}
		snap := game.Snapshot()
		if snap.MinRange != 1 || snap.MaxRange != 100 {
			t.Errorf("Expected range 1..100, got %d..%d", snap.MinRange, snap.MaxRange)
		}
		if snap.Status != engine.StatusInProgress {
			t.Errorf("Expected in_progress, got %s", snap.Status)
		}
	})

	t.Run("invalid range", func(t *testing.T) {
		before := manager.Count()
		_, err := manager.Create(50, 10)
		if !errors.Is(err, engine.ErrInvalidConfiguration) {
			t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
		}
		if manager.Count() != before {
			t.Error("No game should be stored for an invalid range")
		}
	})

	t.Run("unique IDs", func(t *testing.T) {
		ids := make(map[string]bool)
		for i := 0; i < 100; i++ {
			game, err := manager.Create(1, 10)
			if err != nil {
				t.Fatalf("Failed to create game: %v", err)
			}
			if ids[game.ID()] {
				t.Fatalf("Duplicate ID generated: %s", game.ID())
			}
			ids[game.ID()] = true
		}
	})
}

func TestManager_CreateRetriesCollidingIDs(t *testing.T) {
	calls := 0
	ids := []string{"same", "same", "other"}
	manager := NewManager(WithIDGenerator(func() string {
		id := ids[calls]
		calls++
		return id
	}))

	first, _ := manager.Create(1, 10)
	second, err := manager.Create(1, 10)
	if err != nil {
		t.Fatalf("Failed to create game: %v", err)
	}
	if first.ID() != "same" || second.ID() != "other" {
		t.Errorf("Expected IDs same/other, got %s/%s", first.ID(), second.ID())
	}
}

func TestManager_Get(t *testing.T) {
	manager := NewManager(WithIDGenerator(func() string { return "ABC-123" }))
	created, _ := manager.Create(1, 10)

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{"exact ID", "ABC-123", nil},
		{"case insensitive", "abc-123", nil},
		{"unknown ID", "nope", ErrSessionNotFound},
		{"empty ID", "", ErrInvalidSessionID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game, err := manager.Get(tt.id)
			if err != tt.wantErr {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			if err == nil && game != created {
				t.Error("Expected the created game")
			}
		})
	}

	if !manager.Exists("abc-123") || manager.Exists("nope") {
		t.Error("Exists returned unexpected result")
	}
}

func TestManager_FixedSecret(t *testing.T) {
	manager := NewManager(WithSecretSource(FixedSecret(42)))
	game, err := manager.Create(1, 100)
	if err != nil {
		t.Fatalf("Failed to create game: %v", err)
	}

	result, err := game.Evaluate(42, engine.Rules{})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !result.IsCorrect {
		t.Error("Expected fixed secret to be guessed")
	}

	if _, err := manager.Create(50, 60); err == nil {
		t.Error("Expected error when fixed secret is outside range")
	}
}

func TestCryptoSecretSource(t *testing.T) {
	src := CryptoSecretSource{}
	seen := make(map[int]bool)

	for i := 0; i < 2000; i++ {
		v, err := src.Draw(-2, 2)
		if err != nil {
			t.Fatalf("Draw failed: %v", err)
		}
		if v < -2 || v > 2 {
			t.Fatalf("Value %d outside [-2, 2]", v)
		}
		seen[v] = true
	}
	if len(seen) != 5 {
		t.Errorf("Expected every value of the inclusive range to appear, got %v", seen)
	}

	if _, err := src.Draw(5, 1); err == nil {
		t.Error("Expected error for inverted range")
	}
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	for i := 0; i < 5; i++ {
		manager.Create(1, 10)
	}

	games := manager.List()
	if len(games) != 5 || manager.Count() != 5 {
		t.Fatalf("Expected 5 games, got %d (count %d)", len(games), manager.Count())
	}
	for i := 1; i < len(games); i++ {
		if games[i-1].Snapshot().StartedAt.Before(games[i].Snapshot().StartedAt) {
			t.Error("Expected newest games first")
		}
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager(WithSecretSource(FixedSecret(500)))
	game, _ := manager.Create(1, 1000)

	var wg sync.WaitGroup
	errs := make(chan error, 200)

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			if _, err := manager.Create(1, 10); err != nil {
				errs <- err
			}
		}(i)
		go func(n int) {
			defer wg.Done()
			g, err := manager.Get(game.ID())
			if err != nil {
				errs <- err
				return
			}
			if _, err := g.Evaluate(n+1, engine.Rules{}); err != nil {
				errs <- fmt.Errorf("guess %d: %w", n+1, err)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}

	snap := game.Snapshot()
	if snap.AttemptCount != 100 || len(snap.History) != 100 {
		t.Errorf("Expected 100 serialized attempts, got %d/%d", snap.AttemptCount, len(snap.History))
	}
	if !strings.EqualFold(snap.ID, game.ID()) {
		t.Error("Snapshot ID mismatch")
	}
}
