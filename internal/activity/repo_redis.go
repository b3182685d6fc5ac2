package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix    = "activity:"
	redisAnonymousKey = redisKeyPrefix + "anonymous"
)

// appendScript adds one record to a per-actor sorted set and trims it to the newest ARGV[3] members.
var appendScript = redis.NewScript(`
-- KEYS[1] = sorted set key
-- ARGV[1] = score (created_at unix ms)
-- ARGV[2] = member (record json)
-- ARGV[3] = max members to keep
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[2])
local max = tonumber(ARGV[3])
if max > 0 then
  redis.call('ZREMRANGEBYRANK', KEYS[1], 0, -(max + 1))
end
return 1
`)

// RedisRepo keeps records in one sorted set per actor, scored by creation time.
// Anonymous records share a single set. Each set is capped at maxPerKey.
type RedisRepo struct {
	rdb       *redis.Client
	maxPerKey int
}

func NewRedisRepo(rdb *redis.Client, maxPerKey int) *RedisRepo {
	if maxPerKey <= 0 {
		maxPerKey = 1000
	}
	return &RedisRepo{rdb: rdb, maxPerKey: maxPerKey}
}

func actorKey(actorID string) string {
	if actorID == "" {
		return redisAnonymousKey
	}
	return redisKeyPrefix + "actor:" + actorID
}

func (r *RedisRepo) Insert(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	score := rec.CreatedAt.UnixMilli()
	return appendScript.Run(ctx, r.rdb, []string{actorKey(rec.ActorID)}, score, string(payload), r.maxPerKey).Err()
}

func (r *RedisRepo) ListByActor(ctx context.Context, actorID string, limit int) ([]Record, error) {
	items, err := r.rdb.ZRevRange(ctx, actorKey(actorID), 0, int64(ClampLimit(limit)-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *RedisRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	maxScore := "(" + strconv.FormatInt(cutoff.UnixMilli(), 10)

	var removed int64
	iter := r.rdb.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := r.rdb.ZRemRangeByScore(ctx, iter.Val(), "-inf", maxScore).Result()
		if err != nil {
			return removed, err
		}
		removed += n
	}
	return removed, iter.Err()
}
