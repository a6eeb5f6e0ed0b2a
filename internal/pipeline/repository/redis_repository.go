package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/lectio/lectio/internal/pipeline"
)

const (
	sweepLockKey     = "lectio:sweep:lock"
	stageStatusKey   = "lectio:stage:"
	defaultStatusTTL = 24 * time.Hour
)

type pipelineRedisRepo struct {
	redisClient *redis.Client
}

func NewPipelineRedisRepo(redisClient *redis.Client) pipeline.RedisRepository {
	return &pipelineRedisRepo{
		redisClient: redisClient,
	}
}

// AcquireSweepLock takes the global sweep lock with SetNX. A second worker
// hitting the tick at the same moment loses the race and skips its sweep;
// the TTL frees the lock if the holder dies mid-sweep.
func (r *pipelineRedisRepo) AcquireSweepLock(ctx context.Context, ttl time.Duration) (bool, error) {
	locked, err := r.redisClient.SetNX(ctx, sweepLockKey, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	return locked, nil
}

func (r *pipelineRedisRepo) ReleaseSweepLock(ctx context.Context) error {
	if err := r.redisClient.Del(ctx, sweepLockKey).Err(); err != nil {
		return fmt.Errorf("failed to release sweep lock: %w", err)
	}
	return nil
}

func (r *pipelineRedisRepo) SetStageStatus(ctx context.Context, key, status string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultStatusTTL
	}
	if err := r.redisClient.Set(ctx, stageStatusKey+key, status, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set stage status: %w", err)
	}
	return nil
}

func (r *pipelineRedisRepo) GetStageStatus(ctx context.Context, key string) (string, error) {
	status, err := r.redisClient.Get(ctx, stageStatusKey+key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get stage status: %w", err)
	}
	return status, nil
}
