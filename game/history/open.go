package history

import (
	"context"
	"fmt"
	"strings"
)

// Store kinds accepted by Open
const (
	KindMemory = "memory"
	KindFile   = "file"
	KindRedis  = "redis"
	KindSQL    = "sql"
)

// Options select and configure a store
type Options struct {
	Kind        string
	Dir         string
	RedisURL    string
	DatabaseURL string
}

// Open builds the store named by opts.Kind
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case "", KindMemory:
		return NewMemoryStore(), nil
	case KindFile:
		dir := opts.Dir
		if dir == "" {
			dir = "history"
		}
		store, err := NewFileStore(dir)
		if err != nil {
			return nil, err
		}
		return store, nil
	case KindRedis:
		store, err := OpenRedisStore(ctx, opts.RedisURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case KindSQL:
		store, err := OpenSQLStore(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown history store %q (want memory, file, redis or sql)", opts.Kind)
	}
}
