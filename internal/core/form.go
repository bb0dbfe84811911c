package core

import (
	"fmt"
	"strings"
)

// ValidateApplication checks a submitted form and returns the validated
// application. Every check runs so the operator sees all problems at once.
func ValidateApplication(raw RawApplication) (LoanApplication, error) {
	var problems []error

	name := strings.TrimSpace(raw.ApplicantName)
	if name == "" {
		problems = append(problems, ErrEmptyApplicantName)
	}
	if !raw.TermsAccepted {
		problems = append(problems, ErrTermsNotAccepted)
	}

	if !containsInt(LoanAmountOptions, raw.LoanAmount) {
		problems = append(problems, fmt.Errorf("loan amount %d: %w", raw.LoanAmount, ErrUnknownCategory))
	}
	if !containsInt(TermOptions, raw.TermMonths) {
		problems = append(problems, fmt.Errorf("term %d months: %w", raw.TermMonths, ErrUnknownCategory))
	}
	if _, err := ScoringValueForEmployment(raw.EmploymentLength); err != nil {
		problems = append(problems, err)
	}
	if _, err := ScoringValueForIncome(raw.AnnualIncome); err != nil {
		problems = append(problems, err)
	}

	if len(problems) > 0 {
		return LoanApplication{}, &ValidationError{Problems: problems}
	}

	return LoanApplication{
		ApplicantName:    name,
		LoanAmount:       raw.LoanAmount,
		TermMonths:       raw.TermMonths,
		EmploymentLength: raw.EmploymentLength,
		AnnualIncome:     raw.AnnualIncome,
	}, nil
}
