// Package tracking delivers analytics events to their sink. Delivery is best
// effort: callers log publish errors and carry on.
package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/heartmarshall/interlinear-backend/internal/config"
	"github.com/heartmarshall/interlinear-backend/internal/domain"
)

// RedisPublisher appends events to a Redis stream, one entry per event.
type RedisPublisher struct {
	log     *slog.Logger
	rdb     goredis.UniversalClient
	stream  string
	maxLen  int64
	timeout time.Duration
}

// NewRedisPublisher connects to Redis and checks the connection with PING.
func NewRedisPublisher(ctx context.Context, logger *slog.Logger, cfg config.TrackingConfig) (*RedisPublisher, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newRedisPublisher(logger, rdb, cfg), nil
}

func newRedisPublisher(logger *slog.Logger, rdb goredis.UniversalClient, cfg config.TrackingConfig) *RedisPublisher {
	return &RedisPublisher{
		log:     logger.With("publisher", "redis"),
		rdb:     rdb,
		stream:  cfg.Stream,
		maxLen:  cfg.MaxLen,
		timeout: cfg.Timeout,
	}
}

// PublishMany sends all events in one pipeline. The stream is trimmed
// approximately to maxLen entries.
func (p *RedisPublisher) PublishMany(ctx context.Context, events []domain.TrackingEvent) error {
	if len(events) == 0 {
		return nil
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	pipe := p.rdb.Pipeline()
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal tracking event: %w", err)
		}
		pipe.XAdd(ctx, &goredis.XAddArgs{
			Stream: p.stream,
			MaxLen: p.maxLen,
			Approx: p.maxLen > 0,
			Values: map[string]any{
				"type":    e.Type.String(),
				"payload": payload,
			},
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}

	p.log.DebugContext(ctx, "tracking events published", slog.Int("count", len(events)))
	return nil
}

// Ping reports whether Redis is reachable. Used by the readiness check.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// Close releases the Redis connection pool.
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}
