package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/wricardo/mcp-training/guessgame/game/engine"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidSessionID = errors.New("invalid session ID")
)

// Manager is the registry of active games. Games are never removed.
type Manager struct {
	sessions map[string]*engine.Game
	secrets  SecretSource
	newID    func() string
	mu       sync.RWMutex
}

// Option customizes a Manager
type Option func(*Manager)

// WithSecretSource replaces the crypto/rand secret source
func WithSecretSource(src SecretSource) Option {
	return func(m *Manager) {
		if src != nil {
			m.secrets = src
		}
	}
}

// WithIDGenerator replaces uuid-based identifiers
func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) {
		if gen != nil {
			m.newID = gen
		}
	}
}

// NewManager creates a new session manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*engine.Game),
		secrets:  CryptoSecretSource{},
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a game over [minRange, maxRange] with a freshly drawn secret
func (m *Manager) Create(minRange, maxRange int, opts ...engine.Option) (*engine.Game, error) {
	if err := engine.ValidateRange(minRange, maxRange); err != nil {
		return nil, err
	}

	secret, err := m.secrets.Draw(minRange, maxRange)
	if err != nil {
		return nil, fmt.Errorf("failed to draw secret: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.newID()
	for m.sessionExists(id) {
		id = m.newID()
	}

	game, err := engine.NewGame(id, minRange, maxRange, secret, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	m.sessions[normalize(id)] = game
	return game, nil
}

// Get retrieves a game by ID
func (m *Manager) Get(id string) (*engine.Game, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidSessionID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	game, exists := m.sessions[normalize(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return game, nil
}

// Exists checks if a game exists
func (m *Manager) Exists(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionExists(id)
}

// List returns all games ordered by start time, newest first
func (m *Manager) List() []*engine.Game {
	m.mu.RLock()
	games := make([]*engine.Game, 0, len(m.sessions))
	for _, game := range m.sessions {
		games = append(games, game)
	}
	m.mu.RUnlock()

	snaps := make(map[*engine.Game]engine.Snapshot, len(games))
	for _, g := range games {
		snaps[g] = g.Snapshot()
	}
	sort.Slice(games, func(i, j int) bool {
		si, sj := snaps[games[i]], snaps[games[j]]
		if si.StartedAt.Equal(sj.StartedAt) {
			return si.ID < sj.ID
		}
		return si.StartedAt.After(sj.StartedAt)
	})
	return games
}

// Count returns the number of games
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// sessionExists must be called with the lock held
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[normalize(id)]
	return exists
}

func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
