package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDrafter(gen TextGenerator) *EmailDrafter {
	return NewEmailDrafter(gen, zap.NewNop(), time.Second, 0.1, 0.5)
}

func scoredSession(t *testing.T) *MemorySession {
	t.Helper()
	s := NewMemorySession()
	require.NoError(t, s.Put(context.Background(), sampleApplication(), sampleResult()))
	return s
}

func TestApprovalEmail(t *testing.T) {
	body := ApprovalEmail("Jane Doe")
	assert.True(t, strings.HasPrefix(body, "Dear Jane Doe,\n"))
	assert.Contains(t, body, "has been approved")
	assert.True(t, strings.HasSuffix(body, "Your Sincerely,\nNCS(I) Finance HK Limited"))
}

func TestRejectionPrompt(t *testing.T) {
	prompt := RejectionPrompt("Jane Doe", []ExplanationTriple{
		{Label: "Loan Amount", Value: "20000", Strength: -0.42},
		{Label: "Repayment Period", Value: "60", Strength: 0.31},
	})

	assert.Contains(t, prompt, "Generate a professional loan rejection email for Jane Doe.")
	assert.Contains(t, prompt, "- loan amount: 20000\n- repayment period: 60\n")
	assert.Contains(t, prompt, "Dear Jane Doe,")
	assert.True(t, strings.HasSuffix(prompt, "NCS(I) Finance HK Limited"))
	assert.Less(t, strings.Index(prompt, "loan amount"), strings.Index(prompt, "repayment period"))
}

func TestDraft_ApproveIsTemplated(t *testing.T) {
	gen := &fakeGenerator{body: "unused"}
	d := newTestDrafter(gen)
	session := scoredSession(t)

	first, err := d.Draft(context.Background(), DecisionApprove, "", session)
	require.NoError(t, err)
	second, err := d.Draft(context.Background(), DecisionApprove, "", session)
	require.NoError(t, err)

	assert.Equal(t, ApprovalEmail("Jane Doe"), first.Body)
	assert.Equal(t, first, second)
	assert.False(t, first.Failed)
	assert.Equal(t, 0, gen.calls)
}

func TestDraft_RejectUsesTopThreeFactors(t *testing.T) {
	gen := &fakeGenerator{body: "Dear Jane Doe,\nWe regret..."}
	d := newTestDrafter(gen)

	draft, err := d.Draft(context.Background(), DecisionReject, "", scoredSession(t))
	require.NoError(t, err)

	assert.Equal(t, "Dear Jane Doe,\nWe regret...", draft.Body)
	assert.Equal(t, DecisionReject, draft.Decision)
	assert.False(t, draft.Failed)
	require.Equal(t, 1, gen.calls)
	assert.Contains(t, gen.lastReq.Prompt, "- loan amount: 20000")
	assert.InDelta(t, 0.1, gen.lastReq.Temperature, 1e-6)
	assert.InDelta(t, 0.5, gen.lastReq.TopP, 1e-6)
}

func TestDraft_ApproveWithNameNeedsNoSession(t *testing.T) {
	gen := &fakeGenerator{body: "unused"}
	d := newTestDrafter(gen)

	draft, err := d.Draft(context.Background(), DecisionApprove, "Bob", NewMemorySession())
	require.NoError(t, err)
	assert.Equal(t, ApprovalEmail("Bob"), draft.Body)
	assert.Contains(t, draft.Body, "Dear Bob,")

	draft, err = d.Draft(context.Background(), DecisionApprove, "Bob", &failingSession{err: errors.New("redis down")})
	require.NoError(t, err)
	assert.Equal(t, ApprovalEmail("Bob"), draft.Body)
	assert.Equal(t, 0, gen.calls)
}

func TestDraft_ApproveWithoutNameOrSession(t *testing.T) {
	_, err := newTestDrafter(&fakeGenerator{}).Draft(context.Background(), DecisionApprove, " ", NewMemorySession())
	assert.ErrorIs(t, err, ErrMissingScoringContext)
}

func TestDraft_RejectEmptySession(t *testing.T) {
	gen := &fakeGenerator{body: "x"}
	d := newTestDrafter(gen)

	_, err := d.Draft(context.Background(), DecisionReject, "Jane Doe", NewMemorySession())
	assert.ErrorIs(t, err, ErrMissingScoringContext)
	assert.Equal(t, 0, gen.calls)
}

func TestDecisionValidate(t *testing.T) {
	for _, d := range Decisions {
		assert.NoError(t, d.Validate())
	}
	assert.ErrorIs(t, Decision("Maybe").Validate(), ErrUnknownDecision)
	assert.ErrorIs(t, Decision("").Validate(), ErrUnknownDecision)
}

func TestDraft_RejectWithoutResult(t *testing.T) {
	gen := &fakeGenerator{body: "x"}
	session := NewMemorySession()
	require.NoError(t, session.Put(context.Background(), sampleApplication(), nil))

	_, err := newTestDrafter(gen).Draft(context.Background(), DecisionReject, "", session)
	assert.ErrorIs(t, err, ErrMissingScoringContext)
	assert.Equal(t, 0, gen.calls)
}

func TestDraft_GenerationFailureIsDegraded(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("rate limited")}

	draft, err := newTestDrafter(gen).Draft(context.Background(), DecisionReject, "", scoredSession(t))
	require.NoError(t, err)

	assert.True(t, draft.Failed)
	assert.Equal(t, "Error generating email: rate limited", draft.Body)
	assert.ErrorIs(t, draft.Err, ErrEmailGenerationFailed)
}

func TestDraft_UnknownDecision(t *testing.T) {
	_, err := newTestDrafter(&fakeGenerator{}).Draft(context.Background(), Decision("Maybe"), "Jane Doe", scoredSession(t))
	assert.ErrorIs(t, err, ErrUnknownDecision)
}

func TestDraft_SessionReadError(t *testing.T) {
	_, err := newTestDrafter(&fakeGenerator{}).Draft(context.Background(), DecisionApprove, "", &failingSession{err: errors.New("redis down")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}
