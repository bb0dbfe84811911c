package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mikey/loan-approval/internal/core"
	"go.uber.org/zap"
)

const missingContextWarning = "Please submit a loan application first to generate emails."

// withSessionResult fills the results view from whatever the session last scored
func (s *Server) withSessionResult(c echo.Context, page *pageData) {
	state, ok, err := sessionFrom(c).Get(c.Request().Context())
	if err != nil {
		s.logger.Warn("Failed to read session", zap.Error(err))
		return
	}
	if !ok || state.Result == nil {
		return
	}
	page.Form = core.RawApplication{
		ApplicantName:    state.Application.ApplicantName,
		LoanAmount:       state.Application.LoanAmount,
		TermMonths:       state.Application.TermMonths,
		EmploymentLength: state.Application.EmploymentLength,
		AnnualIncome:     state.Application.AnnualIncome,
		TermsAccepted:    true,
	}
	page.setResult(core.RenderResult(state.Application, state.Result))
}

func (s *Server) handleIndex(c echo.Context) error {
	page := newPageData(s.forwarder != nil)
	s.withSessionResult(c, page)
	return c.Render(http.StatusOK, "index.html", page)
}

// parseForm reads the application form. Unparseable numbers become zero and fail validation.
func parseForm(c echo.Context) core.RawApplication {
	amount, _ := strconv.Atoi(c.FormValue("loan_amount"))
	term, _ := strconv.Atoi(c.FormValue("term_months"))
	accepted := c.FormValue("terms_accepted")
	return core.RawApplication{
		ApplicantName:    c.FormValue("applicant_name"),
		LoanAmount:       amount,
		TermMonths:       term,
		EmploymentLength: c.FormValue("employment_length"),
		AnnualIncome:     c.FormValue("annual_income"),
		TermsAccepted:    accepted == "on" || accepted == "true",
	}
}

func (s *Server) handleApply(c echo.Context) error {
	page := newPageData(s.forwarder != nil)
	raw := parseForm(c)
	page.Form = raw

	app, err := core.ValidateApplication(raw)
	if err != nil {
		page.Errors = problemMessages(err)
		return c.Render(http.StatusBadRequest, "index.html", page)
	}

	result, err := s.service.Submit(c.Request().Context(), app, sessionFrom(c))
	if err != nil {
		page.Errors = []string{fmt.Sprintf("Error processing application: %v", err)}
		return c.Render(statusFor(err), "index.html", page)
	}

	page.setResult(core.RenderResult(app, result))
	return c.Render(http.StatusOK, "index.html", page)
}

// scoredState returns the session's last scoring cycle, or ErrMissingScoringContext
// when no application has been scored in this session yet
func scoredState(c echo.Context) (core.SessionState, error) {
	state, ok, err := sessionFrom(c).Get(c.Request().Context())
	if err != nil {
		return core.SessionState{}, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok || state.Result == nil {
		return core.SessionState{}, core.ErrMissingScoringContext
	}
	return state, nil
}

// draftEmail gates drafting on a scored application in the session
func (s *Server) draftEmail(c echo.Context, decision core.Decision) (core.EmailDraft, error) {
	if err := decision.Validate(); err != nil {
		return core.EmailDraft{}, err
	}
	state, err := scoredState(c)
	if err != nil {
		return core.EmailDraft{}, err
	}
	return s.drafter.Draft(c.Request().Context(), decision, state.Application.ApplicantName, sessionFrom(c))
}

func (s *Server) handleEmail(c echo.Context) error {
	page := newPageData(s.forwarder != nil)
	s.withSessionResult(c, page)

	decision := core.Decision(c.FormValue("decision"))
	page.Decision = decision

	draft, err := s.draftEmail(c, decision)
	if err != nil {
		if errors.Is(err, core.ErrMissingScoringContext) {
			page.Warning = missingContextWarning
		} else {
			page.Errors = []string{err.Error()}
		}
		return c.Render(statusFor(err), "index.html", page)
	}

	page.Draft = &draft
	return c.Render(http.StatusOK, "index.html", page)
}

func (s *Server) handleForward(c echo.Context) error {
	page := newPageData(s.forwarder != nil)
	s.withSessionResult(c, page)

	if s.forwarder == nil {
		page.Errors = []string{"Draft forwarding is not enabled"}
		return c.Render(http.StatusServiceUnavailable, "index.html", page)
	}

	decision := core.Decision(c.FormValue("decision"))
	if err := decision.Validate(); err != nil {
		page.Errors = []string{err.Error()}
		return c.Render(http.StatusBadRequest, "index.html", page)
	}

	state, err := scoredState(c)
	if err != nil {
		if errors.Is(err, core.ErrMissingScoringContext) {
			page.Warning = missingContextWarning
		} else {
			page.Errors = []string{err.Error()}
		}
		return c.Render(statusFor(err), "index.html", page)
	}

	draft := core.EmailDraft{
		Decision: decision,
		Body:     c.FormValue("body"),
	}
	page.Decision = draft.Decision
	page.Draft = &draft

	if err := s.forwarder.Forward(c.Request().Context(), state.Application.ApplicantName, draft); err != nil {
		page.ForwardMessage = fmt.Sprintf("Failed to forward draft: %v", err)
		return c.Render(http.StatusBadGateway, "index.html", page)
	}

	page.ForwardMessage = "Draft forwarded for review"
	return c.Render(http.StatusOK, "index.html", page)
}

// ErrorResponse is the JSON error body of the API routes
type ErrorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

// ApplicationResponse is returned by POST /api/v1/applications
type ApplicationResponse struct {
	Application core.LoanApplication `json:"application"`
	Result      core.RenderedResult  `json:"result"`
	Scoring     *core.ScoringResult  `json:"scoring"`
}

// EmailRequest is the body of POST /api/v1/emails
type EmailRequest struct {
	Decision core.Decision `json:"decision"`
}

// EmailResponse is returned by POST /api/v1/emails
type EmailResponse struct {
	Decision core.Decision `json:"decision"`
	Body     string        `json:"body"`
	Failed   bool          `json:"failed"`
	Error    string        `json:"error,omitempty"`
}

func (s *Server) handleAPIApplication(c echo.Context) error {
	var raw core.RawApplication
	if err := c.Bind(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	app, err := core.ValidateApplication(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid application", Problems: problemMessages(err)})
	}

	result, err := s.service.Submit(c.Request().Context(), app, sessionFrom(c))
	if err != nil {
		return c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, ApplicationResponse{
		Application: app,
		Result:      core.RenderResult(app, result),
		Scoring:     result,
	})
}

func (s *Server) handleAPIEmail(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	draft, err := s.draftEmail(c, req.Decision)
	if err != nil {
		return c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
	}

	resp := EmailResponse{Decision: draft.Decision, Body: draft.Body, Failed: draft.Failed}
	if draft.Err != nil {
		resp.Error = draft.Err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case core.IsValidationError(err), errors.Is(err, core.ErrUnknownDecision), errors.Is(err, core.ErrUnknownCategory):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrMissingScoringContext):
		return http.StatusConflict
	case core.IsScoringError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func problemMessages(err error) []string {
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(ve.Problems))
	for _, p := range ve.Problems {
		msg := p.Error()
		if len(msg) > 0 {
			msg = strings.ToUpper(msg[:1]) + msg[1:]
		}
		msgs = append(msgs, msg)
	}
	return msgs
}
