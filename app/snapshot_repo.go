package app

import (
	"context"

	"github.com/jrsteele09/go-backoffice-core/internal/config"
	"github.com/jrsteele09/go-backoffice-core/sessions"
	"github.com/jrsteele09/go-backoffice-core/sessions/filerepo"
	"github.com/jrsteele09/go-backoffice-core/sessions/redisrepo"
	"github.com/jrsteele09/go-backoffice-core/sessions/repofakes"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

func noClose() error { return nil }

// NewSnapshotRepo builds the snapshot store selected by SNAPSHOT_STORE. The
// returned function releases its resources.
func NewSnapshotRepo(ctx context.Context, cfg config.SessionConfig, envCfg config.EnvConfig) (sessions.SnapshotRepo, func() error, error) {
	switch kind := cfg.GetSnapshotStore(); kind {
	case config.SnapshotStoreMemory:
		return repofakes.NewFakeSnapshotRepo(), noClose, nil

	case config.SnapshotStoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.GetRedisAddr()})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, errors.Wrapf(err, "[NewSnapshotRepo] redis ping %s", cfg.GetRedisAddr())
		}
		repo, err := redisrepo.New(client, cfg.GetRedisKey(), redisrepo.WithTTL(cfg.GetRedisTTL()))
		if err != nil {
			_ = client.Close()
			return nil, nil, errors.Wrap(err, "[NewSnapshotRepo]")
		}
		return repo, client.Close, nil

	default:
		repo, err := filerepo.New(envCfg.GetDataFolder(), cfg.GetSnapshotFileName())
		if err != nil {
			return nil, nil, errors.Wrap(err, "[NewSnapshotRepo]")
		}
		return repo, noClose, nil
	}
}
