package health

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisHistory keeps samples in a Redis list per node, trimmed to capacity.
type RedisHistory struct {
	client   *redis.Client
	capacity int
}

func NewRedisHistory(client *redis.Client, capacity int) *RedisHistory {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &RedisHistory{client: client, capacity: capacity}
}

func (h *RedisHistory) makeKey(nodeID string) string {
	return fmt.Sprintf("hexflow:heartbeat:%s", nodeID)
}

func (h *RedisHistory) Record(ctx context.Context, nodeID string, s Sample) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal sample: %w", err)
	}
	key := h.makeKey(nodeID)
	pipe := h.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(h.capacity-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record sample for %s: %w", nodeID, err)
	}
	return nil
}

func (h *RedisHistory) Recent(ctx context.Context, nodeID string, n int) ([]Sample, error) {
	stop := int64(-1)
	if n > 0 {
		stop = int64(n - 1)
	}
	values, err := h.client.LRange(ctx, h.makeKey(nodeID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read samples for %s: %w", nodeID, err)
	}
	out := make([]Sample, 0, len(values))
	for _, v := range values {
		var s Sample
		if err := json.Unmarshal([]byte(v), &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sample: %w", err)
		}
		out = append(out, s)
	}
	return out, nil
}
