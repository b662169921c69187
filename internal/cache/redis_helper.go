// internal/cache/redis_helper.go
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/retail-ars/internal/config"
	"github.com/andresuchdata/retail-ars/pkg/logger"
)

// NewRedisClient builds a client from config, preferring REDIS_URL when set.
func NewRedisClient(cfg config.CacheConfig) (*redis.Client, error) {
	var opts *redis.Options
	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.RedisHost + ":" + cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// hashKey collapses an arbitrary filter value into a short stable cache key
// suffix.
func hashKey(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "nofilter"
	}
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// deleteByPattern removes all keys matching the pattern via SCAN so large
// keyspaces are not blocked by KEYS.
func deleteByPattern(ctx context.Context, client *redis.Client, pattern string) error {
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			if err := client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		if err := client.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	logger.Log.Debug().Str("pattern", pattern).Msg("cache keys invalidated")
	return nil
}
