// Package service provides the business logic layer for the number guessing game.
//
// The service package implements:
//   - Starting games from the active configuration
//   - Guess evaluation with per-guess rules
//   - Configuration reads and partial updates
//   - Match history recording for finished games
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager stores games, ConfigManager supplies configuration, and
// MatchRecorder saves finished games.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Transports call GameService; GameService combines the
// registry, the configuration provider, and the recorder.
//
// Errors:
//
// Unknown games return errors matching ErrGameNotFound. Engine errors
// (engine.ErrAlreadyFinished, engine.ErrOutOfRange,
// engine.ErrInvalidConfiguration) and history errors pass through unchanged
// so callers can branch with errors.Is.
package service
