// Package api provides the HTTP REST API for the number guessing game.
//
// Endpoints:
//
// Games:
//   - POST /api/games - Start a game with the configured range
//   - GET /api/games - List games, newest first
//   - GET /api/games/{id} - Get one game (never includes the secret)
//   - POST /api/games/{id}/guess - Submit {"guess": n}
//
// Configuration:
//   - GET /api/config - Current configuration
//   - PUT /api/config - Partial update, admin only
//
// Match history:
//   - POST /api/matches - Record a finished game {"game_id", "difficulty_rating"}
//   - GET /api/matches?limit=n - Recorded matches, newest first
//   - GET /api/matches/{gameId} - One recorded match
//
// Other:
//   - GET /health - Liveness
//   - GET /api - Endpoint index
//   - GET /ws?game={id} - Spectator feed
//
// Errors are returned as {"error": "..."}. Unknown games answer 404,
// out-of-range guesses 400 with the game's "min" and "max", guesses on a
// finished game 409, and invalid configuration 422.
//
// Admin access:
//
// Configuration updates require X-Admin-Token or Authorization: Bearer. The
// token is compared against the static key, a bcrypt hash of the key, or
// verified as an HS256 JWT carrying role=admin. Without any credential
// configured, updates are refused.
package api
