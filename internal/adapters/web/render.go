package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"

	"github.com/labstack/echo/v4"
	"github.com/mikey/loan-approval/internal/core"
)

//go:embed templates/*.html
var templateFS embed.FS

type renderer struct {
	templates *template.Template
}

func newRenderer() (*renderer, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"selectedInt": func(a, b int) bool { return a == b },
		"amount":      core.FormatAmount,
		"term":        core.FormatTerm,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &renderer{templates: t}, nil
}

// Render implements echo.Renderer
func (r *renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// chartRow is one bar as drawn on the page. Negative bars grow left of the axis.
type chartRow struct {
	Label         string
	Text          string
	Color         string
	NegativeWidth float64
	PositiveWidth float64
}

// pageData is the view model for index.html
type pageData struct {
	Form              core.RawApplication
	LoanAmountOptions []int
	TermOptions       []int
	EmploymentOptions []string
	IncomeOptions     []string
	Decisions         []core.Decision

	Errors  []string
	Warning string

	Result *core.RenderedResult
	Chart  []chartRow

	Decision       core.Decision
	Draft          *core.EmailDraft
	OutboxEnabled  bool
	ForwardMessage string
}

func newPageData(outboxEnabled bool) *pageData {
	return &pageData{
		Form: core.RawApplication{
			LoanAmount: core.LoanAmountOptions[0],
			TermMonths: core.TermOptions[0],
		},
		LoanAmountOptions: core.LoanAmountOptions,
		TermOptions:       core.TermOptions,
		EmploymentOptions: core.EmploymentOptions,
		IncomeOptions:     core.IncomeOptions,
		Decisions:         core.Decisions,
		Decision:          core.DecisionApprove,
		OutboxEnabled:     outboxEnabled,
	}
}

func (p *pageData) setResult(r core.RenderedResult) {
	p.Result = &r
	p.Chart = chartRows(r.Bars)
}

// chartRows scales bar widths to the largest absolute impact, as a percentage of half the chart
func chartRows(bars []core.ChartBar) []chartRow {
	maxImpact := 0.0
	for _, b := range bars {
		maxImpact = math.Max(maxImpact, math.Abs(b.Impact))
	}

	rows := make([]chartRow, 0, len(bars))
	for _, b := range bars {
		row := chartRow{Label: b.Label, Text: b.Text, Color: b.Color}
		if maxImpact > 0 {
			width := math.Abs(b.Impact) / maxImpact * 100
			if b.Impact < 0 {
				row.NegativeWidth = width
			} else {
				row.PositiveWidth = width
			}
		}
		rows = append(rows, row)
	}
	return rows
}
