package config

import "time"

// SnapshotStoreKind selects where the session snapshot is persisted.
type SnapshotStoreKind string

const (
	SnapshotStoreMemory SnapshotStoreKind = "memory"
	SnapshotStoreFile   SnapshotStoreKind = "file"
	SnapshotStoreRedis  SnapshotStoreKind = "redis"
)

type SessionConfig interface {
	GetSnapshotStore() SnapshotStoreKind
	GetSnapshotFileName() string
	GetRedisAddr() string
	GetRedisKey() string
	GetRedisTTL() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSnapshotStore() SnapshotStoreKind {
	switch kind := SnapshotStoreKind(GetEnv("SNAPSHOT_STORE", string(SnapshotStoreFile))); kind {
	case SnapshotStoreMemory, SnapshotStoreFile, SnapshotStoreRedis:
		return kind
	default:
		return SnapshotStoreFile
	}
}

func (Session) GetSnapshotFileName() string {
	return GetEnv("SNAPSHOT_FILE", "session.json")
}

func (Session) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Session) GetRedisKey() string {
	return GetEnv("REDIS_SESSION_KEY", "backoffice:session")
}

// GetRedisTTL expires the Redis snapshot; zero keeps it until logout.
func (Session) GetRedisTTL() time.Duration {
	return GetEnvDuration("SESSION_REDIS_TTL", 0)
}
