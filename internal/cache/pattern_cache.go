package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"autofill-api/internal/model"
)

// PatternCache holds a short-lived copy of the global pattern list so the
// matcher doesn't hit postgres on every prediction. Stats and sync reads
// bypass it on purpose; their counts must be call-time fresh.
type PatternCache interface {
	GetGlobal(ctx context.Context) ([]model.Pattern, error)
	SetGlobal(ctx context.Context, patterns []model.Pattern) error
}

type patternCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPatternCache creates a new global pattern cache with the given TTL
func NewPatternCache(client *redis.Client, ttl time.Duration) PatternCache {
	return &patternCache{
		client: client,
		ttl:    ttl,
	}
}

const globalPatternsKey = "patterns:global"

func (c *patternCache) GetGlobal(ctx context.Context) ([]model.Pattern, error) {
	data, err := c.client.Get(ctx, globalPatternsKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var patterns []model.Pattern
	if err := json.Unmarshal([]byte(data), &patterns); err != nil {
		return nil, err
	}
	return patterns, nil
}

func (c *patternCache) SetGlobal(ctx context.Context, patterns []model.Pattern) error {
	data, err := json.Marshal(patterns)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, globalPatternsKey, data, c.ttl).Err()
}
