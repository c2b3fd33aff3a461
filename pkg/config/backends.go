package config

import (
	"context"
	"fmt"

	"github.com/mdotsev/yatube/internal/cache"
	"github.com/mdotsev/yatube/internal/storage"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	redisCachePrefix     = "yatube:cache:"
	mongoCacheCollection = "page_cache"
)

// NewCacheStore builds the page cache store selected by CACHE_BACKEND
func NewCacheStore(ctx context.Context, cfg *Config, db *DB) (cache.Store, error) {
	switch cfg.CacheBackend {
	case "", "memory":
		return cache.NewMemoryStore(cfg.CacheSize, cfg.CacheTTL), nil
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.WithField("addr", cfg.RedisAddr).Info("Successfully connected to Redis!")
		return cache.NewRedisStore(redisClient, redisCachePrefix, cfg.CacheTTL), nil
	case "mongo":
		if db == nil || db.Mongo == nil {
			return nil, fmt.Errorf("mongo cache backend requires a MongoDB connection")
		}
		store, err := cache.NewMongoStore(ctx, db.Mongo.Database(cfg.MongoDatabase), mongoCacheCollection, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.CacheBackend)
}

// NewMediaStorage builds the upload storage selected by MEDIA_BACKEND
func NewMediaStorage(ctx context.Context, cfg *Config) (storage.Storage, error) {
	switch cfg.MediaBackend {
	case "", "local":
		return storage.NewLocalStorage(cfg.MediaRoot, cfg.MediaURL), nil
	case "s3":
		if cfg.AWSRegion == "" || cfg.AWSBucketName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_BUCKET_NAME must be set for the s3 media backend")
		}
		s3Storage, err := storage.NewS3Storage(ctx, cfg.AWSRegion, cfg.AWSBucketName, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey)
		if err != nil {
			return nil, err
		}
		return s3Storage, nil
	}
	return nil, fmt.Errorf("unknown MEDIA_BACKEND %q", cfg.MediaBackend)
}
