package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/projecthubv3/projecthub-backend/config"
	"github.com/projecthubv3/projecthub-backend/internal/storage/postgres"
	"github.com/projecthubv3/projecthub-backend/internal/storage/redis"
)

// OpenDB connects to Postgres and makes sure the project index exists.
// It returns nil, nil when the database is disabled.
func OpenDB(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	db, err := postgres.NewConnection(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenRedis returns nil, nil when the cache is disabled.
func OpenRedis(ctx context.Context, cfg *config.RedisConfig) (*goredis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	return redis.NewClient(ctx, cfg)
}
