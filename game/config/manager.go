package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/guessgame/game/engine"
	"github.com/wricardo/mcp-training/guessgame/obslog"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrEmptyUpdate    = errors.New("no configuration fields to update")
)

// DefaultFileName is used when no config path is given
const DefaultFileName = "game-config.json"

// Manager is the configuration provider. It loads the config file on the
// first read after construction or Invalidate, and keeps it cached until the
// next Update or Invalidate.
type Manager struct {
	path   string
	cached *engine.GameConfig
	mu     sync.RWMutex
}

// NewManager creates a new configuration manager backed by path
func NewManager(path string) (*Manager, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultFileName
	}

	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", dir)
	}

	return &Manager{path: path}, nil
}

// Path returns the backing file path
func (m *Manager) Path() string {
	return m.path
}

// Current returns the active configuration. Load failures never surface to
// the caller; the defaults are served instead.
func (m *Manager) Current() engine.GameConfig {
	m.mu.RLock()
	if m.cached != nil {
		config := *m.cached
		m.mu.RUnlock()
		return config
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if m.cached != nil {
		return *m.cached
	}

	config := m.loadOrDefault()
	m.cached = &config
	return config
}

// Update merges patch into the current configuration, validates, persists,
// and replaces the cache.
func (m *Manager) Update(patch engine.ConfigPatch) (engine.GameConfig, error) {
	if patch.IsEmpty() {
		return engine.GameConfig{}, ErrEmptyUpdate
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var base engine.GameConfig
	if m.cached != nil {
		base = *m.cached
	} else {
		base = m.loadOrDefault()
	}

	updated := patch.Apply(base)
	if err := engine.ValidateGameConfig(&updated); err != nil {
		return engine.GameConfig{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := writeConfig(m.path, &updated); err != nil {
		return engine.GameConfig{}, err
	}

	m.cached = &updated
	obslog.L().Info("config updated",
		zap.String("path", m.path),
		zap.Int("min_range", updated.MinRange),
		zap.Int("max_range", updated.MaxRange),
		zap.Int("hint_trigger_count", updated.HintTriggerCount))

	return updated, nil
}

// Invalidate drops the cache so the next read reloads the file
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cached = nil
}

// loadOrDefault must be called with m.mu held
func (m *Manager) loadOrDefault() engine.GameConfig {
	config, err := LoadFile(m.path)
	switch {
	case err == nil:
		return *config
	case errors.Is(err, ErrConfigNotFound):
		defaults := engine.DefaultConfig()
		if werr := writeConfig(m.path, &defaults); werr != nil {
			obslog.L().Warn("failed to write default config", zap.String("path", m.path), zap.Error(werr))
		} else {
			obslog.L().Info("created default config", zap.String("path", m.path))
		}
		return defaults
	default:
		obslog.L().Warn("failed to load config, using defaults", zap.String("path", m.path), zap.Error(err))
		return engine.DefaultConfig()
	}
}

// LoadFile reads and validates a config file. Fields missing from the file
// keep their default values.
func LoadFile(path string) (*engine.GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := engine.DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, &config)
	} else {
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

func writeConfig(path string, config *engine.GameConfig) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
