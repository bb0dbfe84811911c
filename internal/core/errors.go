package core

import (
	"errors"
	"strings"
)

var (
	// ErrUnknownCategory is returned for a form value outside its fixed domain
	ErrUnknownCategory = errors.New("unknown category")
	// ErrEmptyApplicantName is returned when the applicant name is blank
	ErrEmptyApplicantName = errors.New("please enter applicant name")
	// ErrTermsNotAccepted is returned when the terms checkbox is not ticked
	ErrTermsNotAccepted = errors.New("please accept terms and conditions")

	// ErrScoringServiceUnavailable covers connection, auth and timeout failures
	ErrScoringServiceUnavailable = errors.New("scoring service unavailable")
	// ErrScoringJobFailed is returned when the job fails or yields no rows
	ErrScoringJobFailed = errors.New("scoring job failed")
	// ErrMalformedScoringResponse is returned when expected columns are missing or unreadable
	ErrMalformedScoringResponse = errors.New("malformed scoring response")

	// ErrMissingScoringContext is returned when drafting needs a result the session does not hold
	ErrMissingScoringContext = errors.New("please submit a loan application first")
	// ErrEmailGenerationFailed wraps any text generation failure
	ErrEmailGenerationFailed = errors.New("email generation failed")
	// ErrUnknownDecision is returned for a decision other than Approve or Reject
	ErrUnknownDecision = errors.New("unknown decision")
)

// ValidationError collects every problem found in a submitted form
type ValidationError struct {
	Problems []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Error())
	}
	return "invalid application: " + strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is match any of the collected problems
func (e *ValidationError) Unwrap() []error {
	return e.Problems
}

// IsValidationError reports whether err is a form validation failure
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsScoringError reports whether err belongs to the scoring failure taxonomy
func IsScoringError(err error) bool {
	return errors.Is(err, ErrScoringServiceUnavailable) ||
		errors.Is(err, ErrScoringJobFailed) ||
		errors.Is(err, ErrMalformedScoringResponse)
}
