// Package cache keeps read-mostly query results in redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mrlokans/conduit/internal/config"
)

const (
	popularTagsKey   = "conduit:tags:popular"
	PopularTagsLimit = 100
	defaultTagsTTL   = 5 * time.Minute
)

// TagsLoader reads the popular-tags list from the database.
type TagsLoader interface {
	PopularTags(ctx context.Context, limit int) ([]string, error)
}

// TagsCache serves the popular-tags list, reading through redis when a
// client is configured. With a nil client every call goes to the loader.
type TagsCache struct {
	loader TagsLoader
	client *redis.Client
	ttl    time.Duration
	log    *zap.SugaredLogger
}

// NewRedisClient returns a client for cfg, or nil when no address is set.
func NewRedisClient(cfg config.Cache) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 2 * time.Second,
		ReadTimeout: time.Second,
	})
}

func NewTagsCache(loader TagsLoader, client *redis.Client, ttl time.Duration, log *zap.SugaredLogger) *TagsCache {
	if ttl <= 0 {
		ttl = defaultTagsTTL
	}
	return &TagsCache{loader: loader, client: client, ttl: ttl, log: log}
}

// PopularTags returns tag names ordered by usage. Redis failures are logged
// and fall back to the database.
func (c *TagsCache) PopularTags(ctx context.Context) ([]string, error) {
	if c.client != nil {
		tags, err := c.get(ctx)
		if err == nil {
			return tags, nil
		}
		if !errors.Is(err, redis.Nil) {
			c.log.Warnw("tags cache read failed", "error", err)
		}
	}

	tags, err := c.loader.PopularTags(ctx, PopularTagsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load popular tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}

	if c.client != nil {
		if err := c.set(ctx, tags); err != nil {
			c.log.Warnw("tags cache write failed", "error", err)
		}
	}
	return tags, nil
}

// InvalidateTags drops the cached list so the next read reloads it.
func (c *TagsCache) InvalidateTags(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, popularTagsKey).Err()
}

// Ping checks the redis connection. It is a no-op without a client.
func (c *TagsCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the redis connection pool.
func (c *TagsCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *TagsCache) get(ctx context.Context) ([]string, error) {
	data, err := c.client.Get(ctx, popularTagsKey).Bytes()
	if err != nil {
		return nil, err
	}
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return nil, fmt.Errorf("corrupt cache entry: %w", err)
	}
	return tags, nil
}

func (c *TagsCache) set(ctx context.Context, tags []string) error {
	data, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, popularTagsKey, data, c.ttl).Err()
}
