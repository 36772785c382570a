package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CacheService is a thin JSON cache over Redis, keyed per tenant so
// invalidation can stay tenant-wide. Affiliation lookups are never cached;
// this is for catalog-style reads only.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(addr, password string, db int, ttl time.Duration) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &CacheService{client: client, ttl: ttl}, nil
}

func key(tenantID uuid.UUID, parts ...string) string {
	k := "erpcore:" + tenantID.String()
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

// Get unmarshals the cached value into dest and reports whether it was found.
// Cache errors are logged and treated as misses.
func (c *CacheService) Get(ctx context.Context, tenantID uuid.UUID, dest any, parts ...string) bool {
	data, err := c.client.Get(ctx, key(tenantID, parts...)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache get failed for %s: %v", key(tenantID, parts...), err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("cache unmarshal failed for %s: %v", key(tenantID, parts...), err)
		return false
	}
	return true
}

func (c *CacheService) Set(ctx context.Context, tenantID uuid.UUID, value any, parts ...string) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache marshal failed for %s: %v", key(tenantID, parts...), err)
		return
	}
	if err := c.client.Set(ctx, key(tenantID, parts...), data, c.ttl).Err(); err != nil {
		log.Printf("cache set failed for %s: %v", key(tenantID, parts...), err)
	}
}

// InvalidatePrefix drops every cached entry under the tenant's prefix, e.g.
// all product reads after a stock adjustment.
func (c *CacheService) InvalidatePrefix(ctx context.Context, tenantID uuid.UUID, prefix string) {
	pattern := key(tenantID, prefix) + "*"
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("cache delete failed for %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		log.Printf("cache scan failed for %s: %v", pattern, err)
	}
}

func (c *CacheService) Close() error {
	return c.client.Close()
}
