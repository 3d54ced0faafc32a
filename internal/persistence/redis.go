package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/config"
)

const (
	ticketSequenceKey   = "issue:ticket:seq"
	resetTokenKeyPrefix = "auth:reset:"
)

// Redis wraps the go-redis client. Beyond connectivity checks it serves
// the ticket-number sequence and password-reset token storage.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// NextTicketNumber reserves the next value of the monotonically
// increasing ticket sequence.
func (r *Redis) NextTicketNumber(ctx context.Context) (int64, error) {
	if r == nil || r.Client == nil {
		return 0, errors.New("redis client not configured")
	}
	return r.Client.Incr(ctx, ticketSequenceKey).Result()
}

// StoreResetToken keeps a password-reset token for the subject with TTL.
func (r *Redis) StoreResetToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Set(ctx, resetTokenKeyPrefix+token, userID, ttl).Err()
}

// ConsumeResetToken returns the subject for a token and deletes it, so
// each token is single-use.
func (r *Redis) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	if r == nil || r.Client == nil {
		return "", errors.New("redis client not configured")
	}
	key := resetTokenKeyPrefix + token
	userID, err := r.Client.Get(ctx, key).Result()
	if err != nil {
		return "", err
	}
	if err := r.Client.Del(ctx, key).Err(); err != nil {
		return "", err
	}
	return userID, nil
}

// Publish sends a payload to a pub/sub channel.
func (r *Redis) Publish(ctx context.Context, channel string, payload []byte) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	if channel == "" {
		return fmt.Errorf("empty channel")
	}
	return r.Client.Publish(ctx, channel, payload).Err()
}
