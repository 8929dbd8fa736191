package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const usageKeyPrefix = "relay:usage:"

// hashStore is the subset of *redis.Client the usage counters need.
type hashStore interface {
	HIncrBy(ctx context.Context, key, field string, incr int64) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// UsageRepo keeps per-candidate attempt counters in Redis hashes,
// one hash per model with one field per outcome.
type UsageRepo struct {
	redis hashStore
}

func NewUsageRepo(client hashStore) *UsageRepo {
	return &UsageRepo{redis: client}
}

func usageKey(model string) string {
	return usageKeyPrefix + model
}

func (r *UsageRepo) Record(ctx context.Context, model, outcome string) error {
	if err := r.redis.HIncrBy(ctx, usageKey(model), outcome, 1).Err(); err != nil {
		return fmt.Errorf("failed to record usage for %s: %w", model, err)
	}
	return nil
}

// Snapshot returns the counters for the given models. Models with no
// recorded attempts are omitted.
func (r *UsageRepo) Snapshot(ctx context.Context, models []string) (map[string]map[string]int64, error) {
	out := make(map[string]map[string]int64, len(models))
	for _, model := range models {
		fields, err := r.redis.HGetAll(ctx, usageKey(model)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read usage for %s: %w", model, err)
		}
		if len(fields) == 0 {
			continue
		}

		counts := make(map[string]int64, len(fields))
		for outcome, raw := range fields {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				continue
			}
			counts[outcome] = n
		}
		out[model] = counts
	}
	return out, nil
}
