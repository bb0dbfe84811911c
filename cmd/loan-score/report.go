package main

import (
	"fmt"
	"io"

	"github.com/mikey/loan-approval/internal/core"
)

func writeReport(w io.Writer, rendered core.RenderedResult, draft *core.EmailDraft) {
	fmt.Fprintf(w, "\n=== Application Summary ===\n")
	fmt.Fprintf(w, "Applicant: %s\n", rendered.Summary.Applicant)
	fmt.Fprintf(w, "Loan amount: %s\n", rendered.Summary.LoanAmount)
	fmt.Fprintf(w, "Term: %s\n", rendered.Summary.Term)
	fmt.Fprintf(w, "Risk score: %s (%s)\n", rendered.Summary.RiskScore, rendered.Summary.RiskDelta)

	fmt.Fprintf(w, "\n=== Risk Assessment ===\n")
	if rendered.HighRisk() {
		fmt.Fprintf(w, "High risk of default: %s\n", rendered.Summary.RiskScore)
	} else {
		fmt.Fprintf(w, "Low risk of default: %s\n", rendered.Summary.RiskScore)
	}

	fmt.Fprintf(w, "\n=== Feature Impact ===\n")
	if len(rendered.Bars) == 0 {
		fmt.Fprintf(w, "No explanations returned\n")
	}
	for _, b := range rendered.Bars {
		fmt.Fprintf(w, "%-32s %s\n", b.Label, b.Text)
	}

	if draft == nil {
		return
	}
	fmt.Fprintf(w, "\n=== Generated Email (%s) ===\n", draft.Decision)
	fmt.Fprintf(w, "%s\n", draft.Body)
}
