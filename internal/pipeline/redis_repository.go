package pipeline

import (
	"context"
	"time"
)

// RedisRepository covers the coordination state the pipeline keeps in redis:
// the sweep lock that stops overlapping full sweeps, and a small stage-status
// cache the trigger API reads.
type RedisRepository interface {
	AcquireSweepLock(ctx context.Context, ttl time.Duration) (bool, error)
	ReleaseSweepLock(ctx context.Context) error
	SetStageStatus(ctx context.Context, key, status string, ttl time.Duration) error
	GetStageStatus(ctx context.Context, key string) (string, error)
}
