package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/projecthubv3/projecthub-backend/internal/projects/domain"
)

const SnapshotKey = "projects:snapshot"

// SnapshotCache keeps the last scanned catalog in Redis as one JSON value.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

// Get returns domain.ErrCacheMiss when no snapshot is stored.
func (c *SnapshotCache) Get(ctx context.Context) ([]domain.Project, error) {
	raw, err := c.client.Get(ctx, SnapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get snapshot: %w", err)
	}

	var projects []domain.Project
	if err := json.Unmarshal(raw, &projects); err != nil {
		// a corrupt entry is dropped and treated as a miss
		_ = c.client.Del(ctx, SnapshotKey).Err()
		return nil, domain.ErrCacheMiss
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return projects, nil
}

func (c *SnapshotCache) Set(ctx context.Context, projects []domain.Project) error {
	if projects == nil {
		projects = []domain.Project{}
	}
	raw, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := c.client.Set(ctx, SnapshotKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set snapshot: %w", err)
	}
	return nil
}

func (c *SnapshotCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, SnapshotKey).Err(); err != nil {
		return fmt.Errorf("redis del snapshot: %w", err)
	}
	return nil
}
