// Package redisrepo stores the session snapshot under a single Redis key.
package redisrepo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jrsteele09/go-backoffice-core/internal/errors"
	"github.com/jrsteele09/go-backoffice-core/sessions"
	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ sessions.SnapshotRepo = (*RedisSnapshotRepo)(nil)

type RedisSnapshotRepo struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// Option modifies a RedisSnapshotRepo at construction.
type Option func(*RedisSnapshotRepo)

// WithTTL expires the snapshot after ttl. Zero keeps it until logout.
func WithTTL(ttl time.Duration) Option {
	return func(r *RedisSnapshotRepo) {
		r.ttl = ttl
	}
}

func New(client redis.UniversalClient, key string, options ...Option) (*RedisSnapshotRepo, error) {
	if client == nil {
		return nil, pkgerrors.New("[redisrepo.New] redis client is required")
	}
	if key == "" {
		return nil, pkgerrors.New("[redisrepo.New] key is required")
	}
	r := &RedisSnapshotRepo{client: client, key: key}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

func (r *RedisSnapshotRepo) Load(ctx context.Context) (*sessions.Snapshot, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errors.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "[RedisSnapshotRepo.Load] get %s", r.key)
	}

	var snapshot sessions.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidSnapshot, "[RedisSnapshotRepo.Load] %s: %v", r.key, err)
	}
	return &snapshot, nil
}

func (r *RedisSnapshotRepo) Save(ctx context.Context, snapshot *sessions.Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return pkgerrors.Wrap(err, "[RedisSnapshotRepo.Save] marshal")
	}
	if err := r.client.Set(ctx, r.key, raw, r.ttl).Err(); err != nil {
		return pkgerrors.Wrapf(err, "[RedisSnapshotRepo.Save] set %s", r.key)
	}
	return nil
}

func (r *RedisSnapshotRepo) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return pkgerrors.Wrapf(err, "[RedisSnapshotRepo.Clear] del %s", r.key)
	}
	return nil
}
