// Package config provides configuration management for the number guessing game.
//
// The config package handles:
//   - Loading the game configuration from a JSON or YAML file
//   - Falling back to built-in defaults when the file is missing or broken
//   - Partial updates with validation, persisted back to the same file
//   - Cache invalidation
//
// Configuration Format:
//
// The file (game-config.json by default) holds:
//
//	{
//	  "min_range": 1,
//	  "max_range": 100,
//	  "hint_trigger_count": 5,
//	  "messages": {"lower": "", "higher": "", "equal": "Got it in {attempts}!"}
//	}
//
// Empty messages use the engine defaults. Files ending in .yaml or .yml use
// the same keys in YAML.
//
// Caching:
//
// A Manager is constructed explicitly and shared by reference. The file is
// read on the first Current call and cached; Update replaces the cache with
// the merged result and Invalidate forces a reload on the next read. Games
// capture their range at creation, while hint trigger and messages are read
// on every guess.
//
// Usage:
//
//	manager, err := config.NewManager("game-config.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg := manager.Current()
//	fmt.Println(cfg.MinRange, cfg.MaxRange)
package config
