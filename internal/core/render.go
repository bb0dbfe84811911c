package core

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Risk classes
const (
	RiskHigh = "high risk"
	RiskLow  = "low risk"

	// RiskThreshold is the probability above which an application is high risk
	RiskThreshold = 0.5
)

// Bar colours
const (
	NegativeImpactColor = "#e74c3c"
	PositiveImpactColor = "#27ae60"
)

// Summary holds the headline fields of a scored application
type Summary struct {
	Applicant  string `json:"applicant"`
	LoanAmount string `json:"loan_amount"`
	Term       string `json:"term"`
	RiskScore  string `json:"risk_score"`
	RiskDelta  string `json:"risk_delta"`
}

// ChartBar is one horizontal bar of the feature impact chart
type ChartBar struct {
	Label  string  `json:"label"`
	Impact float64 `json:"impact"`
	Color  string  `json:"color"`
	Text   string  `json:"text"`
}

// RenderedResult is everything the results view needs
type RenderedResult struct {
	Summary         Summary    `json:"summary"`
	RiskProbability float64    `json:"risk_probability"`
	RiskClass       string     `json:"risk_class"`
	Bars            []ChartBar `json:"bars"`
}

// HighRisk reports whether the rendered result was classified as high risk
func (r RenderedResult) HighRisk() bool {
	return r.RiskClass == RiskHigh
}

// ClassifyRisk applies the fixed threshold. Exactly 0.5 is low risk.
func ClassifyRisk(probability float64) string {
	if probability > RiskThreshold {
		return RiskHigh
	}
	return RiskLow
}

var printer = message.NewPrinter(language.English)

// FormatAmount renders a loan amount as dollars with thousands separators
func FormatAmount(amount int) string {
	return printer.Sprintf("$%d", amount)
}

// FormatTerm renders a repayment term
func FormatTerm(months int) string {
	return fmt.Sprintf("%d months", months)
}

// FormatProbability renders a probability as a one-decimal percentage
func FormatProbability(p float64) string {
	return printer.Sprintf("%.1f%%", p*100)
}

// RenderResult builds the summary, risk class and chart for a scored application
func RenderResult(app LoanApplication, result *ScoringResult) RenderedResult {
	class := ClassifyRisk(result.RiskProbability)
	delta := "Low Risk"
	if class == RiskHigh {
		delta = "High Risk"
	}

	triples := ExtractExplanations(result, ChartExplanationCount)
	bars := make([]ChartBar, 0, len(triples))
	for _, t := range triples {
		color := PositiveImpactColor
		if t.Strength < 0 {
			color = NegativeImpactColor
		}
		bars = append(bars, ChartBar{
			Label:  fmt.Sprintf("%s: %s", t.Label, t.Value),
			Impact: t.Strength,
			Color:  color,
			Text:   fmt.Sprintf("%.3f", t.Strength),
		})
	}

	return RenderedResult{
		Summary: Summary{
			Applicant:  app.ApplicantName,
			LoanAmount: FormatAmount(app.LoanAmount),
			Term:       FormatTerm(app.TermMonths),
			RiskScore:  FormatProbability(result.RiskProbability),
			RiskDelta:  delta,
		},
		RiskProbability: result.RiskProbability,
		RiskClass:       class,
		Bars:            bars,
	}
}
