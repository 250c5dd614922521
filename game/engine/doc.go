// Package engine provides the core game logic for the number guessing game.
//
// The engine package implements the game mechanics including:
//   - Guess evaluation against a secret drawn from an inclusive range
//   - Periodic hints (a one-time parity hint, then narrowing intervals)
//   - Projection of a guess onto the range for graphical display
//   - Range and rule validation
//
// Core Types:
//
// Game holds one secret number and its guess history. Every method on Game
// is safe for concurrent use; guesses against the same game are serialized.
// GameConfig carries the configurable range, hint trigger, and messages,
// while Rules is the per-evaluation subset of it (the range is captured
// once when the game is created and never re-read).
//
// Usage:
//
//	game, err := engine.NewGame(id, 1, 100, secret)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := game.Evaluate(50, cfg.Rules())
//	if errors.Is(err, engine.ErrOutOfRange) {
//		// report the bounds to the player
//	}
//
// Game Rules:
//
// A player guesses integers within [min, max] and is told whether each
// guess is too low, too high, or correct. After every hint-trigger-count
// consecutive misses a hint is emitted: first the parity of the secret,
// afterwards the tightest interval implied by previous guesses. The game
// finishes on the first correct guess; later guesses are rejected.
package engine
