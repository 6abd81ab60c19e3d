package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/go-redis/redis/v8"
)

const categoryTreeKey = "categories:tree"

// TreeCache stores the rendered category tree between mutations.
type TreeCache interface {
	Get(ctx context.Context) ([]*models.CategoryNode, bool)
	Set(ctx context.Context, tree []*models.CategoryNode)
	Invalidate(ctx context.Context)
}

type redisTreeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTreeCache returns a Redis-backed cache, or a cache that never hits when
// client is nil.
func NewTreeCache(client *redis.Client, ttl time.Duration) TreeCache {
	if client == nil {
		return noopTreeCache{}
	}
	return &redisTreeCache{client: client, ttl: ttl}
}

func (c *redisTreeCache) Get(ctx context.Context) ([]*models.CategoryNode, bool) {
	data, err := c.client.Get(ctx, categoryTreeKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("category cache read failed: %v", err)
		}
		return nil, false
	}

	var tree []*models.CategoryNode
	if err := json.Unmarshal(data, &tree); err != nil {
		log.Printf("category cache decode failed: %v", err)
		return nil, false
	}
	return tree, true
}

func (c *redisTreeCache) Set(ctx context.Context, tree []*models.CategoryNode) {
	data, err := json.Marshal(tree)
	if err != nil {
		log.Printf("category cache encode failed: %v", err)
		return
	}
	if err := c.client.Set(ctx, categoryTreeKey, data, c.ttl).Err(); err != nil {
		log.Printf("category cache write failed: %v", err)
	}
}

func (c *redisTreeCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, categoryTreeKey).Err(); err != nil {
		log.Printf("category cache invalidation failed: %v", err)
	}
}

type noopTreeCache struct{}

func (noopTreeCache) Get(context.Context) ([]*models.CategoryNode, bool) { return nil, false }
func (noopTreeCache) Set(context.Context, []*models.CategoryNode)        {}
func (noopTreeCache) Invalidate(context.Context)                         {}
