// Package mcp exposes the number guessing game as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool calls the REST API and renders the
// answer as text for the agent. Tools:
//   - start_game: Start a game with the configured range
//   - guess: Submit {game_id, number}
//   - get_game: Status and guess history of a game
//   - get_config: Current range, hint frequency and messages
//   - save_match: Record a finished game {game_id, difficulty_rating}
//   - game_instructions: Rules, hints and strategy
//
// Transports:
//
// Client implements http.Handler for single JSON-RPC messages on POST /mcp.
// For stdio, pass GetMCPServer to server.ServeStdio.
//
// REST errors become tool errors; out-of-range guesses include the valid
// range in the message.
package mcp
