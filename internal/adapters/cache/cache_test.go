package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/mikey/loan-approval/internal/core"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleResult() *core.ScoringResult {
	return &core.ScoringResult{
		RiskProbability: 0.72,
		Explanations: []core.Explanation{
			{Present: true, FeatureName: core.FeatureLoanAmount, ActualValue: "20000", Strength: -0.42},
			{},
		},
		ScoredAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		DeploymentID: "dep-1",
	}
}

const key = "20000|60|11+ years|Above $60k"

func TestMemoryCache_PutGet(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), 0)
	defer c.Stop()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, key, sampleResult(), time.Minute))
	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleResult(), got)
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), 0)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, key, sampleResult(), time.Minute))

	got, _, _ := c.Get(ctx, key)
	got.Explanations[0].FeatureName = "mutated"

	again, _, _ := c.Get(ctx, key)
	assert.Equal(t, core.FeatureLoanAmount, again.Explanations[0].FeatureName)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), 0)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, key, sampleResult(), 10*time.Millisecond))
	require.NoError(t, c.Put(ctx, "other", sampleResult(), time.Hour))

	time.Sleep(20 * time.Millisecond)
	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Cleanup(ctx))
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_StopIsIdempotent(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Millisecond)
	c.Stop()
	c.Stop()
}

func TestRedisCache_Miniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCache(client, zap.NewNop())
	defer c.Stop()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, key, sampleResult(), 5*time.Minute))
	assert.True(t, mr.Exists(RedisKeyPrefix+key))
	assert.Equal(t, 5*time.Minute, mr.TTL(RedisKeyPrefix+key))

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleResult(), got)

	mr.FastForward(6 * time.Minute)
	_, ok, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_Errors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCache(client, zap.NewNop())
	ctx := context.Background()

	mock.ExpectGet(RedisKeyPrefix + key).SetErr(errors.New("connection reset"))
	_, _, err := c.Get(ctx, key)
	assert.ErrorContains(t, err, "connection reset")

	mock.ExpectGet(RedisKeyPrefix + key).SetVal("not json")
	_, _, err = c.Get(ctx, key)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteCache(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), zap.NewNop(), 0)
	require.NoError(t, err)
	defer c.Stop()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, key, sampleResult(), time.Minute))
	require.NoError(t, c.Put(ctx, key, sampleResult(), time.Minute))
	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleResult(), got)

	require.NoError(t, c.Put(ctx, "stale", sampleResult(), -time.Second))
	_, ok, err = c.Get(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, c.Cleanup(ctx))
}

func TestMySQLCache(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS scoring_cache").WillReturnResult(sqlmock.NewResult(0, 0))
	c, err := NewMySQLCacheFromDB(db, zap.NewNop(), 0)
	require.NoError(t, err)
	ctx := context.Background()

	data, err := encodeResult(sampleResult())
	require.NoError(t, err)

	mock.ExpectQuery("SELECT result FROM scoring_cache").
		WithArgs(key, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"result"}).AddRow(string(data)))
	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleResult(), got)

	mock.ExpectQuery("SELECT result FROM scoring_cache").
		WithArgs("missing", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"result"}))
	_, ok, err = c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectExec("INSERT INTO scoring_cache").
		WithArgs(key, string(data), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, c.Put(ctx, key, sampleResult(), time.Minute))

	mock.ExpectExec("DELETE FROM scoring_cache").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))
	require.NoError(t, c.Cleanup(ctx))

	mock.ExpectClose()
	c.Stop()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCache_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	c, err := NewMySQLCacheFromDB(db, zap.NewNop(), 0)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT result").WillReturnError(errors.New("lost connection"))
	_, _, err = c.Get(context.Background(), key)
	assert.ErrorContains(t, err, "lost connection")
}
