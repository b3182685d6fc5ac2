package main

import (
	"context"
	"fmt"

	"shophub/internal/activity"
	"shophub/internal/config"
	"shophub/pkg/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// activityStore is what the activity pipeline needs from a backend.
type activityStore interface {
	activity.Repository
	activity.Pruner
}

// openActivityStore connects the backend selected by ACTIVITY_STORE.
// The returned close func is never nil.
func openActivityStore(ctx context.Context, cfg config.Config) (activityStore, func(), error) {
	switch cfg.Activity.Store {
	case config.StorePostgres:
		db, err := utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), cfg.PostgresPool())
		if err != nil {
			return nil, func() {}, fmt.Errorf("postgres init: %w", err)
		}
		repo := activity.NewPostgresRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, func() {}, fmt.Errorf("activity schema: %w", err)
		}
		return repo, func() { _ = db.Close() }, nil

	case config.StoreRedis:
		rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, func() {}, fmt.Errorf("redis init: %w", err)
		}
		return activity.NewRedisRepo(rdb, cfg.Activity.RedisMaxPerActor), func() { _ = rdb.Close() }, nil

	case config.StoreMemory:
		return activity.NewMemoryRepo(), func() {}, nil

	default:
		return nil, func() {}, fmt.Errorf("unknown activity store %q", cfg.Activity.Store)
	}
}
