// Package resultcache keeps reference-query results in Redis. Reference
// answers never change for a given question, so a hit saves a round trip
// to the practice database on every grading after the first.
package resultcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/rueidis"
	"github.com/sql-trainer/backend/internal/sqlrunner"
)

const redisBaseResultPrefix = "grader:base:"

// RedisCache stores reference results as RedisJSON documents.
type RedisCache struct {
	redis rueidis.Client
}

func NewRedisCache(redis rueidis.Client) *RedisCache {
	return &RedisCache{redis: redis}
}

func resultKey(slug string, questionID int) string {
	return fmt.Sprintf("%s%s:%d", redisBaseResultPrefix, slug, questionID)
}

// Get returns the cached reference result for a question. A miss and a
// Redis failure look the same to the caller; failures are only logged
// because grading can always fall back to executing the query.
func (c *RedisCache) Get(ctx context.Context, slug string, questionID int) (sqlrunner.ResultSet, bool) {
	key := resultKey(slug, questionID)

	reply := c.redis.Do(ctx, c.redis.B().JsonGet().Key(key).Path(".").Build())
	if reply.Error() != nil {
		if !rueidis.IsRedisNil(reply.Error()) {
			slog.Warn("reference-result cache read failed", "key", key, "error", reply.Error())
		}

		return sqlrunner.ResultSet{}, false
	}

	var result sqlrunner.ResultSet
	if err := reply.DecodeJSON(&result); err != nil {
		slog.Warn("reference-result cache entry is corrupt", "key", key, "error", err)
		return sqlrunner.ResultSet{}, false
	}

	return result, true
}

func (c *RedisCache) Set(ctx context.Context, slug string, questionID int, result sqlrunner.ResultSet) {
	key := resultKey(slug, questionID)

	payload, err := json.Marshal(result)
	if err != nil {
		slog.Warn("marshal reference result", "key", key, "error", err)
		return
	}

	reply := c.redis.Do(ctx, c.redis.B().JsonSet().Key(key).Path(".").Value(rueidis.BinaryString(payload)).Build())
	if reply.Error() != nil {
		slog.Warn("reference-result cache write failed", "key", key, "error", reply.Error())
	}
}
