package tokenstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/tablepos/internal/config"
	"github.com/spec-kit/tablepos/internal/persistence"
)

// Open builds the Store selected by cfg.Store.Driver. The returned close
// function releases any connection the backend holds.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		return New(NewMemoryKV(), logger), func() {}, nil
	case config.StoreFile, "":
		kv, err := NewFileKV(cfg.Store.FilePath, cfg.Store.EncryptionSecret)
		if err != nil {
			return nil, nil, err
		}
		return New(kv, logger), func() {}, nil
	case config.StoreRedis:
		r := persistence.NewRedis(ctx, cfg.Redis, logger)
		return New(NewRedisKV(r.Client, cfg.Store.RedisPrefix), logger).withPing(r.Ping), r.Close, nil
	case config.StorePostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return New(NewPostgresKV(pg.PoolHandle()), logger).withPing(pg.Ping), pg.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
