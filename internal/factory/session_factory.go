package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/mikey/loan-approval/internal/adapters/session"
	"github.com/mikey/loan-approval/internal/config"
	"github.com/mikey/loan-approval/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StoppableSessionProvider is a session provider that owns background work or connections
type StoppableSessionProvider interface {
	core.SessionProvider
	Stop()
}

// SessionFactory creates session providers based on configuration
type SessionFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSessionFactory creates a new session factory
func NewSessionFactory(cfg *config.Config, logger *zap.Logger) *SessionFactory {
	return &SessionFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSessionProvider creates a session provider based on the configuration
func (f *SessionFactory) CreateSessionProvider() (StoppableSessionProvider, error) {
	sessionCfg, err := f.cfg.GetSession()
	if err != nil {
		return nil, fmt.Errorf("invalid session configuration: %w", err)
	}

	switch sessionCfg.Type {
	case "memory":
		return session.NewMemoryProvider(f.logger, sessionCfg.IdleTimeout), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     sessionCfg.RedisAddress,
			Password: sessionCfg.RedisPassword,
			DB:       sessionCfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", sessionCfg.RedisAddress, err)
		}
		return session.NewRedisProvider(client, f.logger, sessionCfg.IdleTimeout), nil
	default:
		return nil, fmt.Errorf("unsupported session type: %s", sessionCfg.Type)
	}
}
