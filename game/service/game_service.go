package service

import (
	"context"

	"github.com/wricardo/mcp-training/guessgame/game/engine"
	"github.com/wricardo/mcp-training/guessgame/game/history"
)

// GameService defines all game-related operations
type GameService interface {
	// Games
	StartGame(ctx context.Context) (*GameInfo, error)
	GetGame(ctx context.Context, gameID string) (*GameInfo, error)
	ListGames(ctx context.Context) ([]*GameInfo, error)
	Guess(ctx context.Context, gameID string, guess int) (*GuessResult, error)

	// Configuration
	GetConfig(ctx context.Context) (*engine.GameConfig, error)
	UpdateConfig(ctx context.Context, patch engine.ConfigPatch) (*engine.GameConfig, error)

	// Match history
	SaveMatch(ctx context.Context, gameID string, difficultyRating *int) (*history.MatchRecord, error)
	GetMatch(ctx context.Context, gameID string) (*history.MatchRecord, error)
	ListMatches(ctx context.Context, limit int) ([]*history.MatchRecord, error)
}

// SessionManager defines game storage operations
type SessionManager interface {
	Create(minRange, maxRange int, opts ...engine.Option) (*engine.Game, error)
	Get(id string) (*engine.Game, error)
	List() []*engine.Game
}

// ConfigManager supplies the active configuration
type ConfigManager interface {
	Current() engine.GameConfig
	Update(patch engine.ConfigPatch) (engine.GameConfig, error)
}

// MatchRecorder saves finished games
type MatchRecorder interface {
	Record(ctx context.Context, summary engine.Summary, rating *int) (*history.MatchRecord, error)
	Get(ctx context.Context, gameID string) (*history.MatchRecord, error)
	List(ctx context.Context, limit int) ([]*history.MatchRecord, error)
}
