package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// manifestTTL bounds how long a finished job's manifest is retrievable.
const manifestTTL = 7 * 24 * time.Hour

// RedisManifest stores the decomposition manifest of finished jobs as a
// JSON blob keyed by job id.
type RedisManifest struct {
	client *redis.Client
}

func NewRedisManifest(client *redis.Client) *RedisManifest {
	return &RedisManifest{client: client}
}

func manifestKey(jobID string) string { return fmt.Sprintf("job:%s:manifest", jobID) }

// Put serializes v and stores it under the job id.
func (m *RedisManifest) Put(ctx context.Context, jobID string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return m.client.Set(ctx, manifestKey(jobID), b, manifestTTL).Err()
}

// Get returns the raw manifest JSON, or found=false when absent.
func (m *RedisManifest) Get(ctx context.Context, jobID string) ([]byte, bool, error) {
	b, err := m.client.Get(ctx, manifestKey(jobID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}
