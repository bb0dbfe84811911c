package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/loan-approval/internal/metrics"
	"go.uber.org/zap"
)

// LoanService runs the scoring cycle for an application
type LoanService struct {
	scorer         ScoringClient
	cache          ScoringCache
	logger         *zap.Logger
	cacheEnabled   bool
	cacheTTL       time.Duration
	scoringTimeout time.Duration
}

// NewLoanService creates a new loan service
func NewLoanService(
	scorer ScoringClient,
	cache ScoringCache,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
	scoringTimeout time.Duration,
) *LoanService {
	return &LoanService{
		scorer:         scorer,
		cache:          cache,
		logger:         logger,
		cacheEnabled:   cacheEnabled && cache != nil,
		cacheTTL:       cacheTTL,
		scoringTimeout: scoringTimeout,
	}
}

// Score returns the scoring result for an application, served from the cache
// when the same inputs were scored within the cache TTL.
func (s *LoanService) Score(ctx context.Context, app LoanApplication) (*ScoringResult, error) {
	req, err := ToScoringRequest(app)
	if err != nil {
		return nil, err
	}

	key := CacheKey(app)
	if s.cacheEnabled {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("Failed to read scoring cache", zap.String("key", key), zap.Error(err))
		} else if ok {
			s.logger.Debug("Cache hit for scoring inputs", zap.String("key", key))
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	scoreCtx := ctx
	if s.scoringTimeout > 0 {
		var cancel context.CancelFunc
		scoreCtx, cancel = context.WithTimeout(ctx, s.scoringTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.scorer.Score(scoreCtx, req)
	metrics.ScoringDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !IsScoringError(err) {
			err = fmt.Errorf("%w: %v", ErrScoringServiceUnavailable, err)
		}
		metrics.ScoringRequests.WithLabelValues(outcomeOf(err)).Inc()
		s.logger.Error("Scoring failed",
			zap.String("key", key),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, err
	}
	metrics.ScoringRequests.WithLabelValues("ok").Inc()

	s.logger.Info("Scored application",
		zap.String("key", key),
		zap.Float64("risk_probability", result.RiskProbability),
		zap.Duration("elapsed", time.Since(start)))

	if s.cacheEnabled {
		if err := s.cache.Put(ctx, key, result, s.cacheTTL); err != nil {
			s.logger.Error("Failed to update scoring cache", zap.Error(err))
		}
	}

	return result, nil
}

// Submit scores an already validated application and records it in session.
// The session is only written after a successful score.
func (s *LoanService) Submit(ctx context.Context, app LoanApplication, session Session) (*ScoringResult, error) {
	result, err := s.Score(ctx, app)
	if err != nil {
		return nil, err
	}
	if err := session.Put(ctx, app, result); err != nil {
		return nil, fmt.Errorf("failed to store session state: %w", err)
	}
	return result, nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrScoringServiceUnavailable):
		return "unavailable"
	case errors.Is(err, ErrScoringJobFailed):
		return "job_failed"
	case errors.Is(err, ErrMalformedScoringResponse):
		return "malformed"
	default:
		return "error"
	}
}
