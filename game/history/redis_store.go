package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "guessgame"

// insertScript writes the record and its index entry in one step. A failed
// index write deletes the record again so the game can be saved later.
// Returns 0 when the record already exists.
var insertScript = redis.NewScript(`
if redis.call('SETNX', KEYS[1], ARGV[1]) == 0 then
	return 0
end
local res = redis.pcall('ZADD', KEYS[2], ARGV[2], ARGV[3])
if type(res) ~= 'number' then
	redis.call('DEL', KEYS[1])
	if type(res) == 'table' and res.err then
		return res
	end
	return redis.error_reply('ERR match index write failed')
end
return 1
`)

// RedisStore keeps records as JSON strings with a sorted-set index ordered
// by save time.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client. prefix namespaces all keys.
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// OpenRedisStore connects to redisURL and pings it
func OpenRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for redis history store")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStore(rdb, defaultRedisPrefix), nil
}

func (s *RedisStore) recordKey(gameID string) string {
	return s.prefix + ":match:" + gameID
}

func (s *RedisStore) indexKey() string {
	return s.prefix + ":matches"
}

func (s *RedisStore) Insert(ctx context.Context, rec *MatchRecord) error {
	if rec.GameID == "" {
		return ErrInvalidGameID
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal match record: %w", err)
	}

	keys := []string{s.recordKey(rec.GameID), s.indexKey()}
	score := strconv.FormatInt(rec.SavedAt.UnixMilli(), 10)
	inserted, err := insertScript.Run(ctx, s.rdb, keys, data, score, rec.GameID).Int()
	if err != nil {
		return fmt.Errorf("redis insert: %w", err)
	}
	if inserted == 0 {
		return ErrAlreadyRecorded
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, gameID string) (*MatchRecord, error) {
	data, err := s.rdb.Get(ctx, s.recordKey(gameID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var rec MatchRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match record: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) List(ctx context.Context, limit int) ([]*MatchRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := s.rdb.ZRevRange(ctx, s.indexKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrevrange: %w", err)
	}
	if len(ids) == 0 {
		return []*MatchRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recordKey(id)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	out := make([]*MatchRecord, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var rec MatchRecord
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			continue
		}
		out = append(out, &rec)
	}
	return out, nil
}

func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
