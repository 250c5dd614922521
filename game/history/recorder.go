package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wricardo/mcp-training/guessgame/game/engine"
	"github.com/wricardo/mcp-training/guessgame/obslog"
	"go.uber.org/zap"
)

var (
	ErrGameNotFinished = errors.New("game is not finished")
	ErrAlreadyRecorded = errors.New("match already recorded")
	ErrRecordNotFound  = errors.New("match record not found")
	ErrInvalidRating   = errors.New("difficulty rating must be between 1 and 5")
	ErrInvalidGameID   = errors.New("invalid game ID")
)

const (
	MinRating = 1
	MaxRating = 5

	DefaultListLimit = 20
	MaxListLimit     = 100
)

// MatchRecord is one saved game
type MatchRecord struct {
	HistoryID        string    `json:"history_id"`
	GameID           string    `json:"game_id"`
	Attempts         int       `json:"attempts"`
	HintsGiven       int       `json:"hints_given"`
	MinRange         int       `json:"min_range"`
	MaxRange         int       `json:"max_range"`
	ElapsedMs        int64     `json:"elapsed_ms"`
	DifficultyRating *int      `json:"difficulty_rating,omitempty"`
	SavedAt          time.Time `json:"saved_at"`
}

// Store persists match records. Insert must fail with ErrAlreadyRecorded
// when a record for the same game ID exists.
type Store interface {
	Insert(ctx context.Context, rec *MatchRecord) error
	Get(ctx context.Context, gameID string) (*MatchRecord, error)
	List(ctx context.Context, limit int) ([]*MatchRecord, error)
	Close() error
}

// Recorder turns finished games into match records
type Recorder struct {
	store Store
	now   func() time.Time
	newID func() string
}

// NewRecorder creates a recorder on top of store
func NewRecorder(store Store) *Recorder {
	return &Recorder{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Record saves a finished game. rating is optional.
func (r *Recorder) Record(ctx context.Context, summary engine.Summary, rating *int) (*MatchRecord, error) {
	if summary.Status != engine.StatusFinished {
		return nil, ErrGameNotFinished
	}
	if rating != nil && (*rating < MinRating || *rating > MaxRating) {
		return nil, ErrInvalidRating
	}

	rec := &MatchRecord{
		HistoryID:        r.newID(),
		GameID:           summary.GameID,
		Attempts:         summary.Attempts,
		HintsGiven:       summary.HintsGiven,
		MinRange:         summary.MinRange,
		MaxRange:         summary.MaxRange,
		ElapsedMs:        summary.Elapsed.Milliseconds(),
		DifficultyRating: rating,
		SavedAt:          r.now().UTC().Truncate(time.Millisecond),
	}

	if err := r.store.Insert(ctx, rec); err != nil {
		if errors.Is(err, ErrAlreadyRecorded) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save match record: %w", err)
	}

	obslog.L().Info("match recorded",
		zap.String("game_id", rec.GameID),
		zap.String("history_id", rec.HistoryID),
		zap.Int("attempts", rec.Attempts),
		zap.Int64("elapsed_ms", rec.ElapsedMs))

	return rec, nil
}

// Get returns the record for a game
func (r *Recorder) Get(ctx context.Context, gameID string) (*MatchRecord, error) {
	return r.store.Get(ctx, gameID)
}

// List returns the newest records first. limit is clamped to MaxListLimit.
func (r *Recorder) List(ctx context.Context, limit int) ([]*MatchRecord, error) {
	return r.store.List(ctx, clampLimit(limit))
}

// Close releases the underlying store
func (r *Recorder) Close() error {
	return r.store.Close()
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
