package core

import (
	"fmt"
	"time"
)

// RawApplication holds the form fields as submitted, before validation
type RawApplication struct {
	ApplicantName    string `json:"applicant_name" form:"applicant_name"`
	LoanAmount       int    `json:"loan_amount" form:"loan_amount"`
	TermMonths       int    `json:"term_months" form:"term_months"`
	EmploymentLength string `json:"employment_length" form:"employment_length"`
	AnnualIncome     string `json:"annual_income" form:"annual_income"`
	TermsAccepted    bool   `json:"terms_accepted" form:"terms_accepted"`
}

// LoanApplication is a validated application. It is only produced by
// ValidateApplication and is not modified afterwards.
type LoanApplication struct {
	ApplicantName    string `json:"applicant_name"`
	LoanAmount       int    `json:"loan_amount"`
	TermMonths       int    `json:"term_months"`
	EmploymentLength string `json:"employment_length"`
	AnnualIncome     string `json:"annual_income"`
}

// ScoringRequest is the single row submitted to the scoring deployment
type ScoringRequest struct {
	LoanAmount       int `json:"loan_amnt"`
	Term             int `json:"term"`
	EmploymentLength int `json:"emp_length"`
	AnnualIncome     int `json:"annual_inc"`
}

// Explanation is one ranked attribution returned by the scoring deployment.
// Present is false when the deployment returned no columns for the rank.
type Explanation struct {
	Present     bool    `json:"present"`
	FeatureName string  `json:"feature_name,omitempty"`
	ActualValue string  `json:"actual_value,omitempty"`
	Strength    float64 `json:"strength,omitempty"`
}

// ScoringResult is the decoded first row of a scoring job.
// Explanations are positional: index 0 holds EXPLANATION_1.
type ScoringResult struct {
	RiskProbability float64       `json:"risk_probability"`
	Explanations    []Explanation `json:"explanations"`
	ScoredAt        time.Time     `json:"scored_at"`
	DeploymentID    string        `json:"deployment_id,omitempty"`
}

// ExplanationTriple is an explanation relabelled for display
type ExplanationTriple struct {
	Label    string  `json:"label"`
	Value    string  `json:"value"`
	Strength float64 `json:"strength"`
}

// SessionState is what one interactive session remembers between actions
type SessionState struct {
	Application LoanApplication `json:"application"`
	Result      *ScoringResult  `json:"result,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Decision is the operator's verdict used to pick an email template
type Decision string

const (
	DecisionApprove Decision = "Approve"
	DecisionReject  Decision = "Reject"
)

// Decisions lists the values offered on the email form
var Decisions = []Decision{DecisionApprove, DecisionReject}

// Validate returns ErrUnknownDecision for anything other than Approve or Reject
func (d Decision) Validate() error {
	for _, known := range Decisions {
		if d == known {
			return nil
		}
	}
	return fmt.Errorf("%q: %w", string(d), ErrUnknownDecision)
}

// EmailDraft is the drafted decision email. When Failed is set the body holds
// the generation error so the operator still sees something.
type EmailDraft struct {
	Decision Decision `json:"decision"`
	Body     string   `json:"body"`
	Failed   bool     `json:"failed"`
	Err      error    `json:"-"`
}

// GenerationRequest carries a single-turn prompt to a text generator
type GenerationRequest struct {
	Prompt      string
	Temperature float32
	TopP        float32
}
