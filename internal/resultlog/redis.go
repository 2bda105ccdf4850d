// Package resultlog publishes the outcome of each sync run to Redis so
// that back-office dashboards can poll the latest state or subscribe to
// completion events.
//
// Redis keys:
//
//	SET  gestsync:sync:<domain>:state  <JSON>  EX <ttl>  — last known outcome, for GET polling
//	PUB  gestsync:sync:<domain>                          — completion event, for pub/sub routing
package resultlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gestpos/gestsync/internal/domain"
)

// Config holds the Redis connection settings for result publication.
type Config struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      int    `yaml:"ttl"` // state key lifetime, seconds
}

const defaultTTL = 24 * time.Hour

// RedisPublisher keeps the last run per domain in Redis and announces
// completions on a per-domain channel.
type RedisPublisher struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPublisher connects a publisher to the configured Redis instance.
func NewRedisPublisher(cfg Config) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ttl := defaultTTL
	if cfg.TTL > 0 {
		ttl = time.Duration(cfg.TTL) * time.Second
	}
	return &RedisPublisher{client: client, ttl: ttl}
}

// Publish stores the run under the domain state key and broadcasts it:
//   - SET gestsync:sync:<domain>:state <JSON> EX <ttl>  → polling
//   - PUBLISH gestsync:sync:<domain> <JSON>             → subscription
//
// Called for every finished run, success or failure.
func (p *RedisPublisher) Publish(ctx context.Context, run domain.SyncRun) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	stateKey := fmt.Sprintf("gestsync:sync:%s:state", run.Domain)
	eventChannel := fmt.Sprintf("gestsync:sync:%s", run.Domain)

	if err := p.client.Set(ctx, stateKey, payload, p.ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}
	if err := p.client.Publish(ctx, eventChannel, payload).Err(); err != nil {
		return fmt.Errorf("redis PUBLISH failed: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
