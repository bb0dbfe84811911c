package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoringValueForEmployment(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"0 - 5 years", 0},
		{"6 - 10 years", 6},
		{"11+ years", 10},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ScoringValueForEmployment(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ScoringValueForEmployment("forever")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestScoringValueForIncome(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"Below $30k", 15000},
		{"$30k - $60k", 40000},
		{"Above $60k", 100000},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ScoringValueForIncome(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ScoringValueForIncome("above $60k")
	assert.True(t, errors.Is(err, ErrUnknownCategory))
}

func TestDisplayLabel(t *testing.T) {
	label, err := DisplayLabel(FeatureTerm)
	require.NoError(t, err)
	assert.Equal(t, "Repayment Period", label)

	label, err = DisplayLabel(FeatureEmploymentLength)
	require.NoError(t, err)
	assert.Equal(t, "Employment Years", label)

	_, err = DisplayLabel("grade")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestToScoringRequest(t *testing.T) {
	req, err := ToScoringRequest(sampleApplication())
	require.NoError(t, err)
	assert.Equal(t, ScoringRequest{
		LoanAmount:       20000,
		Term:             60,
		EmploymentLength: 10,
		AnnualIncome:     100000,
	}, req)

	app := sampleApplication()
	app.AnnualIncome = "lots"
	_, err = ToScoringRequest(app)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestCacheKey_IgnoresApplicantName(t *testing.T) {
	a := sampleApplication()
	b := sampleApplication()
	b.ApplicantName = "John Roe"
	assert.Equal(t, CacheKey(a), CacheKey(b))

	c := sampleApplication()
	c.TermMonths = 36
	assert.NotEqual(t, CacheKey(a), CacheKey(c))
}
