// Package session provides the registry of active guessing games.
//
// The session package implements:
//   - Thread-safe game storage and retrieval
//   - Unique game ID generation (UUID v4)
//   - Uniform secret drawing with crypto/rand
//
// Core Types:
//
// Manager maps game IDs to *engine.Game values. SecretSource draws the
// secret for a new game; CryptoSecretSource is the production source and
// FixedSecret pins the value for tests.
//
// Concurrency:
//
// The registry map is guarded by a RWMutex. Each game carries its own lock,
// so guesses on different games never contend and guesses on the same game
// are applied one at a time.
//
// Usage:
//
//	manager := session.NewManager()
//
//	game, err := manager.Create(1, 100)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game, err = manager.Get(game.ID())
//
// Games are kept for the lifetime of the process; there is no deletion or
// expiry.
package session
