package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/guessgame/game/engine"
)

func finishedSummary(gameID string) engine.Summary {
	return engine.Summary{
		GameID:     gameID,
		Status:     engine.StatusFinished,
		Attempts:   4,
		HintsGiven: 0,
		MinRange:   1,
		MaxRange:   100,
		Elapsed:    2500 * time.Millisecond,
		FinishedAt: time.Now(),
	}
}

func TestRecorder_Record(t *testing.T) {
	ctx := context.Background()
	rating := func(v int) *int { return &v }

	tests := []struct {
		name    string
		summary engine.Summary
		rating  *int
		wantErr error
	}{
		{"finished without rating", finishedSummary("a"), nil, nil},
		{"finished with rating", finishedSummary("b"), rating(5), nil},
		{"unfinished", engine.Summary{GameID: "c", Status: engine.StatusInProgress}, nil, ErrGameNotFinished},
		{"rating too low", finishedSummary("d"), rating(0), ErrInvalidRating},
		{"rating too high", finishedSummary("e"), rating(6), ErrInvalidRating},
	}

	recorder := NewRecorder(NewMemoryStore())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := recorder.Record(ctx, tt.summary, tt.rating)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Record failed: %v", err)
			}
			if rec.HistoryID == "" {
				t.Error("Expected generated history ID")
			}
			if rec.ElapsedMs != 2500 || rec.Attempts != 4 {
				t.Errorf("Unexpected record: %+v", rec)
			}
		})
	}
}

func TestRecorder_RejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	recorder := NewRecorder(NewMemoryStore())

	if _, err := recorder.Record(ctx, finishedSummary("once"), nil); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if _, err := recorder.Record(ctx, finishedSummary("once"), nil); !errors.Is(err, ErrAlreadyRecorded) {
		t.Fatalf("Expected ErrAlreadyRecorded, got %v", err)
	}

	recs, err := recorder.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("Expected 1 record, got %d", len(recs))
	}
}

func TestRecorder_GetAndList(t *testing.T) {
	ctx := context.Background()
	recorder := NewRecorder(NewMemoryStore())
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recorder.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	for _, id := range []string{"x", "y", "z"} {
		if _, err := recorder.Record(ctx, finishedSummary(id), nil); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	rec, err := recorder.Get(ctx, "y")
	if err != nil || rec.GameID != "y" {
		t.Fatalf("Get failed: %v %+v", err, rec)
	}

	recs, _ := recorder.List(ctx, 2)
	if len(recs) != 2 || recs[0].GameID != "z" || recs[1].GameID != "y" {
		t.Errorf("Unexpected list order: %+v", recs)
	}
}

func TestClampLimit(t *testing.T) {
	tests := map[int]int{0: DefaultListLimit, -1: DefaultListLimit, 5: 5, 1000: MaxListLimit}
	for in, want := range tests {
		if got := clampLimit(in); got != want {
			t.Errorf("clampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
