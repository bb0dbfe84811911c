package core

import (
	"fmt"
)

// Scoring schema feature identifiers
const (
	FeatureLoanAmount       = "loan_amnt"
	FeatureTerm             = "term"
	FeatureEmploymentLength = "emp_length"
	FeatureAnnualIncome     = "annual_inc"
)

// Form options, in display order
var (
	LoanAmountOptions = []int{5000, 15000, 20000}
	TermOptions       = []int{36, 60}
	EmploymentOptions = []string{"0 - 5 years", "6 - 10 years", "11+ years"}
	IncomeOptions     = []string{"Below $30k", "$30k - $60k", "Above $60k"}
)

var employmentValues = map[string]int{
	"0 - 5 years":  0,
	"6 - 10 years": 6,
	"11+ years":    10,
}

var incomeValues = map[string]int{
	"Below $30k":  15000,
	"$30k - $60k": 40000,
	"Above $60k":  100000,
}

var displayLabels = map[string]string{
	FeatureLoanAmount:       "Loan Amount",
	FeatureTerm:             "Repayment Period",
	FeatureEmploymentLength: "Employment Years",
	FeatureAnnualIncome:     "Annual Income",
}

// ScoringValueForEmployment maps an employment-length bucket to its ordinal value
func ScoringValueForEmployment(label string) (int, error) {
	v, ok := employmentValues[label]
	if !ok {
		return 0, fmt.Errorf("employment length %q: %w", label, ErrUnknownCategory)
	}
	return v, nil
}

// ScoringValueForIncome maps an annual-income bucket to its representative value
func ScoringValueForIncome(label string) (int, error) {
	v, ok := incomeValues[label]
	if !ok {
		return 0, fmt.Errorf("annual income %q: %w", label, ErrUnknownCategory)
	}
	return v, nil
}

// DisplayLabel returns the human-readable name of a schema feature
func DisplayLabel(featureID string) (string, error) {
	label, ok := displayLabels[featureID]
	if !ok {
		return "", fmt.Errorf("feature %q: %w", featureID, ErrUnknownCategory)
	}
	return label, nil
}

// ToScoringRequest derives the scoring row for an application
func ToScoringRequest(app LoanApplication) (ScoringRequest, error) {
	emp, err := ScoringValueForEmployment(app.EmploymentLength)
	if err != nil {
		return ScoringRequest{}, err
	}
	inc, err := ScoringValueForIncome(app.AnnualIncome)
	if err != nil {
		return ScoringRequest{}, err
	}
	return ScoringRequest{
		LoanAmount:       app.LoanAmount,
		Term:             app.TermMonths,
		EmploymentLength: emp,
		AnnualIncome:     inc,
	}, nil
}

// CacheKey identifies an application's scoring inputs. Applicant name is not
// part of the key because it never reaches the model.
func CacheKey(app LoanApplication) string {
	return fmt.Sprintf("%d|%d|%s|%s", app.LoanAmount, app.TermMonths, app.EmploymentLength, app.AnnualIncome)
}

func containsInt(options []int, v int) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
