package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/loan-approval/internal/core"
	"go.uber.org/zap"
)

// MySQLCache is a MySQL implementation of the ScoringCache interface
type MySQLCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	cache, err := NewMySQLCacheFromDB(db, logger, cleanupFreq)
	if err != nil {
		db.Close()
		return nil, err
	}
	return cache, nil
}

// NewMySQLCacheFromDB creates a MySQL cache on an open connection pool
func NewMySQLCacheFromDB(db *sql.DB, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS scoring_cache (
			cache_key VARCHAR(255) PRIMARY KEY,
			result TEXT NOT NULL,
			expires_at BIGINT NOT NULL,
			INDEX idx_scoring_cache_expires_at (expires_at)
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &MySQLCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	if cleanupFreq > 0 {
		go cache.startCleanupTask()
	}

	return cache, nil
}

// Get retrieves a live entry
func (c *MySQLCache) Get(ctx context.Context, key string) (*core.ScoringResult, bool, error) {
	var data string
	err := c.db.QueryRowContext(ctx, `
		SELECT result
		FROM scoring_cache
		WHERE cache_key = ? AND expires_at > ?
	`, key, time.Now().UnixMilli()).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to query cache: %w", err)
	}

	result, err := decodeResult([]byte(data))
	if err != nil {
		return nil, false, err
	}
	return result, true, nil
}

// Put stores an entry for ttl
func (c *MySQLCache) Put(ctx context.Context, key string, result *core.ScoringResult, ttl time.Duration) error {
	data, err := encodeResult(result)
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO scoring_cache (cache_key, result, expires_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			result = VALUES(result),
			expires_at = VALUES(expires_at)
	`, key, string(data), time.Now().Add(ttl).UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}

	return nil
}

// Cleanup removes expired entries
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM scoring_cache
		WHERE expires_at <= ?
	`, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *MySQLCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database connection
func (c *MySQLCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
