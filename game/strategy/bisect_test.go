package strategy

import (
	"errors"
	"testing"

	"github.com/wricardo/mcp-training/guessgame/game/engine"
)

func TestBisect_NextAndObserve(t *testing.T) {
	b := NewBisect(1, 100)

	guess, _ := b.Next()
	if guess != 50 {
		t.Fatalf("Expected first guess 50, got %d", guess)
	}

	b.Observe(50, engine.OutcomeLower, nil)
	if low, high := b.Bounds(); low != 51 || high != 100 {
		t.Errorf("Expected bounds (51, 100), got (%d, %d)", low, high)
	}

	b.Observe(75, engine.OutcomeHigher, nil)
	if low, high := b.Bounds(); low != 51 || high != 74 {
		t.Errorf("Expected bounds (51, 74), got (%d, %d)", low, high)
	}
	if b.Remaining() != 24 {
		t.Errorf("Expected 24 candidates, got %d", b.Remaining())
	}
}

func TestBisect_Hints(t *testing.T) {
	t.Run("range hint intersects", func(t *testing.T) {
		b := NewBisect(1, 100)
		b.Observe(10, engine.OutcomeLower, &engine.Hint{
			Kind:   engine.HintRange,
			Bounds: &engine.HintBounds{Low: 31, High: 69},
		})
		if low, high := b.Bounds(); low != 31 || high != 69 {
			t.Errorf("Expected bounds (31, 69), got (%d, %d)", low, high)
		}
	})

	t.Run("parity hint aligns bounds and guesses", func(t *testing.T) {
		b := NewBisect(1, 100)
		b.Observe(49, engine.OutcomeLower, &engine.Hint{Kind: engine.HintParity, Parity: "even"})

		low, high := b.Bounds()
		if low != 50 || high != 100 {
			t.Errorf("Expected even bounds (50, 100), got (%d, %d)", low, high)
		}
		if b.Remaining() != 26 {
			t.Errorf("Expected 26 even candidates, got %d", b.Remaining())
		}
		guess, _ := b.Next()
		if guess%2 != 0 {
			t.Errorf("Expected even guess, got %d", guess)
		}
	})

	t.Run("contradiction detected", func(t *testing.T) {
		b := NewBisect(1, 10)
		b.Observe(5, engine.OutcomeLower, nil)
		err := b.Observe(6, engine.OutcomeHigher, nil)
		if !errors.Is(err, ErrInconsistent) {
			t.Fatalf("Expected ErrInconsistent, got %v", err)
		}
		if _, err := b.Next(); !errors.Is(err, ErrInconsistent) {
			t.Errorf("Expected Next to fail, got %v", err)
		}
	})
}

func TestWorstCaseAttempts(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 2},
		{100, 7},
		{128, 8},
		{1000, 10},
	}

	for _, tt := range tests {
		if got := WorstCaseAttempts(tt.n); got != tt.want {
			t.Errorf("WorstCaseAttempts(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestPlay_FindsEverySecret(t *testing.T) {
	rules := engine.Rules{HintTrigger: 2}
	worst := WorstCaseAttempts(100)

	for secret := 1; secret <= 100; secret++ {
		game, err := engine.NewGame("g", 1, 100, secret)
		if err != nil {
			t.Fatalf("NewGame failed: %v", err)
		}
		result, err := Play(game, rules)
		if err != nil {
			t.Fatalf("Play(secret=%d) failed: %v", secret, err)
		}
		if !result.IsCorrect {
			t.Fatalf("Play(secret=%d) did not finish", secret)
		}
		if result.AttemptCount > worst {
			t.Errorf("Play(secret=%d) took %d attempts, worst case is %d", secret, result.AttemptCount, worst)
		}
	}
}
