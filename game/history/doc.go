// Package history records finished games into a match history.
//
// Recorder validates a finished game's summary and hands a MatchRecord to a
// Store. Stores enforce one record per game ID atomically:
//   - MemoryStore keeps records in a map (the default)
//   - FileStore writes one JSON file per game, created with O_EXCL
//   - RedisStore uses SETNX plus a sorted-set index by save time
//   - SQLStore uses INSERT ... ON CONFLICT DO NOTHING on PostgreSQL or SQLite
//
// Open picks a store from a kind name and connection settings.
package history
