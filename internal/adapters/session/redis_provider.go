package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/loan-approval/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisKeyPrefix namespaces session keys
const RedisKeyPrefix = "session:"

// RedisProvider stores each session's state as a JSON value with an idle TTL
type RedisProvider struct {
	client      *redis.Client
	logger      *zap.Logger
	idleTimeout time.Duration
}

// NewRedisProvider creates a new Redis session provider
func NewRedisProvider(client *redis.Client, logger *zap.Logger, idleTimeout time.Duration) *RedisProvider {
	return &RedisProvider{
		client:      client,
		logger:      logger,
		idleTimeout: idleTimeout,
	}
}

// Session returns a handle on the session for id
func (p *RedisProvider) Session(ctx context.Context, id string) (core.Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session id is required")
	}
	return &redisSession{provider: p, key: RedisKeyPrefix + id}, nil
}

// Stop closes the Redis connection
func (p *RedisProvider) Stop() {
	if err := p.client.Close(); err != nil {
		p.logger.Error("Failed to close Redis client", zap.Error(err))
	}
}

type redisSession struct {
	provider *RedisProvider
	key      string
}

func (s *redisSession) Put(ctx context.Context, app core.LoanApplication, result *core.ScoringResult) error {
	data, err := json.Marshal(core.SessionState{
		Application: app,
		Result:      result,
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	if err := s.provider.client.Set(ctx, s.key, data, s.provider.idleTimeout).Err(); err != nil {
		return fmt.Errorf("failed to store session state: %w", err)
	}
	return nil
}

func (s *redisSession) Get(ctx context.Context) (core.SessionState, bool, error) {
	data, err := s.provider.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return core.SessionState{}, false, nil
		}
		return core.SessionState{}, false, fmt.Errorf("failed to load session state: %w", err)
	}

	var state core.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return core.SessionState{}, false, fmt.Errorf("failed to decode session state: %w", err)
	}

	if s.provider.idleTimeout > 0 {
		if err := s.provider.client.Expire(ctx, s.key, s.provider.idleTimeout).Err(); err != nil {
			s.provider.logger.Warn("Failed to refresh session TTL", zap.String("key", s.key), zap.Error(err))
		}
	}
	return state, true, nil
}
