package service

import (
	"context"
	"fmt"

	"github.com/wricardo/mcp-training/guessgame/game/engine"
	"github.com/wricardo/mcp-training/guessgame/game/history"
	"github.com/wricardo/mcp-training/guessgame/obslog"
	"go.uber.org/zap"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	matches  MatchRecorder
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, matches MatchRecorder) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		matches:  matches,
	}
}

// StartGame creates a game using the range currently configured
func (s *gameServiceImpl) StartGame(ctx context.Context) (*GameInfo, error) {
	config := s.configs.Current()

	game, err := s.sessions.Create(config.MinRange, config.MaxRange)
	if err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}

	snap := game.Snapshot()
	obslog.L().Info("game started",
		zap.String("game_id", snap.ID),
		zap.Int("min_range", snap.MinRange),
		zap.Int("max_range", snap.MaxRange),
		zap.Time("started_at", snap.StartedAt))

	return newGameInfo(snap), nil
}

// GetGame retrieves game information
func (s *gameServiceImpl) GetGame(ctx context.Context, gameID string) (*GameInfo, error) {
	game, err := s.getGame(gameID)
	if err != nil {
		return nil, err
	}
	return newGameInfo(game.Snapshot()), nil
}

// ListGames returns all games, newest first
func (s *gameServiceImpl) ListGames(ctx context.Context) ([]*GameInfo, error) {
	games := s.sessions.List()
	infos := make([]*GameInfo, 0, len(games))
	for _, game := range games {
		infos = append(infos, newGameInfo(game.Snapshot()))
	}
	return infos, nil
}

// Guess evaluates a guess. Hint trigger and messages are read from the
// configuration on every call; the range was fixed when the game started.
func (s *gameServiceImpl) Guess(ctx context.Context, gameID string, guess int) (*GuessResult, error) {
	game, err := s.getGame(gameID)
	if err != nil {
		return nil, err
	}

	rules := s.configs.Current().Rules()
	result, err := game.Evaluate(guess, rules)
	if err != nil {
		return nil, err
	}

	logger := obslog.L().With(zap.String("game_id", game.ID()))
	logger.Debug("guess evaluated",
		zap.Int("guess", guess),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("attempt", result.AttemptCount),
		zap.Bool("hint", result.Hint != nil))
	if result.IsCorrect {
		fields := []zap.Field{zap.Int("attempts", result.AttemptCount)}
		if result.ElapsedSeconds != nil {
			fields = append(fields, zap.Float64("elapsed_seconds", *result.ElapsedSeconds))
		}
		logger.Info("game finished", fields...)
	}

	return &GuessResult{GameID: game.ID(), Result: result}, nil
}

// GetConfig returns the active configuration
func (s *gameServiceImpl) GetConfig(ctx context.Context) (*engine.GameConfig, error) {
	config := s.configs.Current()
	return &config, nil
}

// UpdateConfig applies a partial configuration update
func (s *gameServiceImpl) UpdateConfig(ctx context.Context, patch engine.ConfigPatch) (*engine.GameConfig, error) {
	config, err := s.configs.Update(patch)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveMatch records a finished game into the match history
func (s *gameServiceImpl) SaveMatch(ctx context.Context, gameID string, difficultyRating *int) (*history.MatchRecord, error) {
	game, err := s.getGame(gameID)
	if err != nil {
		return nil, err
	}
	return s.matches.Record(ctx, game.Summary(), difficultyRating)
}

// GetMatch returns the recorded match for a game
func (s *gameServiceImpl) GetMatch(ctx context.Context, gameID string) (*history.MatchRecord, error) {
	return s.matches.Get(ctx, gameID)
}

// ListMatches returns recorded matches, newest first
func (s *gameServiceImpl) ListMatches(ctx context.Context, limit int) ([]*history.MatchRecord, error) {
	return s.matches.List(ctx, limit)
}

func (s *gameServiceImpl) getGame(gameID string) (*engine.Game, error) {
	game, err := s.sessions.Get(gameID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s (%v)", ErrGameNotFound, gameID, err)
	}
	return game, nil
}
