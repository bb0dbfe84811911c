package core

import (
	"context"
	"sync"
	"time"
)

type fakeScorer struct {
	mu       sync.Mutex
	result   *ScoringResult
	err      error
	calls    int
	requests []ScoringRequest
	block    bool
}

func (f *fakeScorer) Score(ctx context.Context, req ScoringRequest) (*ScoringResult, error) {
	f.mu.Lock()
	f.calls++
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeGenerator struct {
	body    string
	err     error
	calls   int
	lastReq GenerationRequest
}

func (f *fakeGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.body, nil
}

type mapCache struct {
	entries map[string]*ScoringResult
	getErr  error
	putErr  error
	lastTTL time.Duration
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]*ScoringResult)}
}

func (c *mapCache) Get(ctx context.Context, key string) (*ScoringResult, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	r, ok := c.entries[key]
	return r, ok, nil
}

func (c *mapCache) Put(ctx context.Context, key string, result *ScoringResult, ttl time.Duration) error {
	if c.putErr != nil {
		return c.putErr
	}
	c.lastTTL = ttl
	c.entries[key] = result
	return nil
}

func (c *mapCache) Cleanup(ctx context.Context) error {
	return nil
}

type failingSession struct {
	err error
}

func (s *failingSession) Put(ctx context.Context, app LoanApplication, result *ScoringResult) error {
	return s.err
}

func (s *failingSession) Get(ctx context.Context) (SessionState, bool, error) {
	return SessionState{}, false, s.err
}

func sampleApplication() LoanApplication {
	return LoanApplication{
		ApplicantName:    "Jane Doe",
		LoanAmount:       20000,
		TermMonths:       60,
		EmploymentLength: "11+ years",
		AnnualIncome:     "Above $60k",
	}
}

func sampleResult() *ScoringResult {
	return &ScoringResult{
		RiskProbability: 0.72,
		Explanations: []Explanation{
			{Present: true, FeatureName: FeatureLoanAmount, ActualValue: "20000", Strength: -0.42},
			{Present: true, FeatureName: FeatureTerm, ActualValue: "60", Strength: 0.31},
			{},
			{},
			{},
		},
	}
}
