package core

import (
	"context"
	"time"
)

// ScoringClient submits a scoring request to the remote deployment
type ScoringClient interface {
	// Score runs a single-row job and returns its first result row
	Score(ctx context.Context, req ScoringRequest) (*ScoringResult, error)
}

// TextGenerator produces free-form text from a single-turn prompt
type TextGenerator interface {
	// Generate returns the model output verbatim
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// ScoringCache holds scoring results for a bounded time, keyed by the full input tuple
type ScoringCache interface {
	// Get returns the cached result for key; ok is false on miss or expiry
	Get(ctx context.Context, key string) (result *ScoringResult, ok bool, err error)

	// Put stores a result for ttl
	Put(ctx context.Context, key string, result *ScoringResult, ttl time.Duration) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// Session is the state of one interactive session
type Session interface {
	// Put replaces the session's most recent application and result
	Put(ctx context.Context, app LoanApplication, result *ScoringResult) error

	// Get returns the most recent entry; ok is false when nothing was stored yet
	Get(ctx context.Context) (state SessionState, ok bool, err error)
}

// SessionProvider resolves sessions by their opaque identifier
type SessionProvider interface {
	// Session returns the session for id, creating an empty one if needed
	Session(ctx context.Context, id string) (Session, error)
}

// DraftForwarder hands a drafted email to a human reviewer
type DraftForwarder interface {
	// Forward sends the draft for the named applicant
	Forward(ctx context.Context, applicantName string, draft EmailDraft) error
}
