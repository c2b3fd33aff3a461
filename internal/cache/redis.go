package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries in Redis under a key prefix
type RedisStore struct {
	redisClient *redis.Client
	prefix      string
	ttl         time.Duration
}

func NewRedisStore(redisClient *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		redisClient: redisClient,
		prefix:      prefix,
		ttl:         ttl,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.redisClient.Get(ctx, s.getRedisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.redisClient.Set(ctx, s.getRedisKey(key), value, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.redisClient.Del(ctx, s.getRedisKey(key)).Err()
}

// Flush deletes the keys under the store prefix only
func (s *RedisStore) Flush(ctx context.Context) error {
	var keys []string
	iter := s.redisClient.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.redisClient.Del(ctx, keys...).Err()
}

func (s *RedisStore) getRedisKey(key string) string {
	return s.prefix + key
}
