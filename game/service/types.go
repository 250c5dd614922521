package service

import (
	"errors"
	"time"

	"github.com/wricardo/mcp-training/guessgame/game/engine"
)

// ErrGameNotFound is returned for unknown game IDs
var ErrGameNotFound = errors.New("game not found")

// GameInfo provides information about a game. The secret is never included.
type GameInfo struct {
	ID           string               `json:"id"`
	MinRange     int                  `json:"min_range"`
	MaxRange     int                  `json:"max_range"`
	Status       engine.Status        `json:"status"`
	StartedAt    time.Time            `json:"started_at"`
	FinishedAt   *time.Time           `json:"finished_at,omitempty"`
	AttemptCount int                  `json:"attempt_count"`
	HintsGiven   int                  `json:"hints_given"`
	History      []engine.GuessRecord `json:"history"`
}

// GuessResult contains the result of a guess
type GuessResult struct {
	GameID string `json:"game_id"`
	*engine.Result
}

// GuessRequest is the body of a guess
type GuessRequest struct {
	Guess *int `json:"guess"`
}

// SaveMatchRequest is the body of a match history save
type SaveMatchRequest struct {
	GameID           string `json:"game_id"`
	DifficultyRating *int   `json:"difficulty_rating,omitempty"`
}

func newGameInfo(snap engine.Snapshot) *GameInfo {
	return &GameInfo{
		ID:           snap.ID,
		MinRange:     snap.MinRange,
		MaxRange:     snap.MaxRange,
		Status:       snap.Status,
		StartedAt:    snap.StartedAt,
		FinishedAt:   snap.FinishedAt,
		AttemptCount: snap.AttemptCount,
		HintsGiven:   snap.HintsGiven,
		History:      snap.History,
	}
}
