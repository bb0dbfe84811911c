package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mikey/loan-approval/internal/metrics"
	"go.uber.org/zap"
)

const signOff = "Your Sincerely,\nNCS(I) Finance HK Limited"

const approvalFormat = `Dear %s,

We are pleased to inform you that your loan application has been approved!

Our AI-powered assessment system has evaluated your application favorably based on your financial profile. You can expect to hear from our loan processing team within 2-3 business days to finalize the details.

Thank you for choosing NCS Finance.

` + signOff

// ApprovalEmail returns the fixed approval letter for an applicant
func ApprovalEmail(applicantName string) string {
	return fmt.Sprintf(approvalFormat, applicantName)
}

// RejectionPrompt builds the instruction sent to the text generator for a
// rejection letter. Factors are listed in rank order.
func RejectionPrompt(applicantName string, factors []ExplanationTriple) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a professional loan rejection email for %s.\n\n", applicantName)
	b.WriteString("Key factors for rejection:\n")
	for _, f := range factors {
		fmt.Fprintf(&b, "- %s: %s\n", strings.ToLower(f.Label), f.Value)
	}
	b.WriteString("\nRequirements:\n")
	b.WriteString("- Professional and empathetic tone\n")
	b.WriteString("- Don't mention exact values\n")
	b.WriteString("- List the reasons for rejection in point form\n")
	b.WriteString("- Provide constructive advice for future applications\n")
	b.WriteString("- Use this format:\n\n")
	fmt.Fprintf(&b, "Dear %s,\n", applicantName)
	b.WriteString("[Content with rejection reasons in bullet points and improvement suggestions]\n")
	b.WriteString(signOff)
	return b.String()
}

// EmailDrafter drafts decision emails for the application held in a session
type EmailDrafter struct {
	generator   TextGenerator
	logger      *zap.Logger
	timeout     time.Duration
	temperature float32
	topP        float32
}

// NewEmailDrafter creates a new email drafter
func NewEmailDrafter(
	generator TextGenerator,
	logger *zap.Logger,
	timeout time.Duration,
	temperature float32,
	topP float32,
) *EmailDrafter {
	return &EmailDrafter{
		generator:   generator,
		logger:      logger,
		timeout:     timeout,
		temperature: temperature,
		topP:        topP,
	}
}

// Draft produces the email for decision. Approve only needs applicantName and
// falls back to the session's applicant when it is blank. Reject uses the
// session's last scoring cycle. A failed generation is not an error: the draft
// carries the failure text.
func (d *EmailDrafter) Draft(ctx context.Context, decision Decision, applicantName string, session Session) (EmailDraft, error) {
	if err := decision.Validate(); err != nil {
		return EmailDraft{}, err
	}

	if decision == DecisionApprove && strings.TrimSpace(applicantName) != "" {
		metrics.EmailDrafts.WithLabelValues(string(decision), "template").Inc()
		return EmailDraft{Decision: decision, Body: ApprovalEmail(applicantName)}, nil
	}

	state, ok, err := session.Get(ctx)
	if err != nil {
		return EmailDraft{}, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		return EmailDraft{}, ErrMissingScoringContext
	}

	if decision == DecisionApprove {
		metrics.EmailDrafts.WithLabelValues(string(decision), "template").Inc()
		return EmailDraft{
			Decision: decision,
			Body:     ApprovalEmail(state.Application.ApplicantName),
		}, nil
	}

	if state.Result == nil {
		return EmailDraft{}, ErrMissingScoringContext
	}

	factors := ExtractExplanations(state.Result, EmailExplanationCount)
	prompt := RejectionPrompt(state.Application.ApplicantName, factors)

	genCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	body, err := d.generator.Generate(genCtx, GenerationRequest{
		Prompt:      prompt,
		Temperature: d.temperature,
		TopP:        d.topP,
	})
	if err != nil {
		genErr := fmt.Errorf("%w: %v", ErrEmailGenerationFailed, err)
		d.logger.Error("Failed to generate rejection email",
			zap.String("applicant", state.Application.ApplicantName),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		metrics.EmailDrafts.WithLabelValues(string(decision), "failed").Inc()
		return EmailDraft{
			Decision: decision,
			Body:     fmt.Sprintf("Error generating email: %v", err),
			Failed:   true,
			Err:      genErr,
		}, nil
	}

	d.logger.Debug("Generated rejection email",
		zap.String("applicant", state.Application.ApplicantName),
		zap.Int("factors", len(factors)),
		zap.Duration("elapsed", time.Since(start)))
	metrics.EmailDrafts.WithLabelValues(string(decision), "generated").Inc()

	return EmailDraft{Decision: decision, Body: body}, nil
}
