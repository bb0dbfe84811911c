package datarobot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mikey/loan-approval/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleCSV = `is_bad_0_PREDICTION,is_bad_1_PREDICTION,EXPLANATION_1_FEATURE_NAME,EXPLANATION_1_ACTUAL_VALUE,EXPLANATION_1_STRENGTH,EXPLANATION_2_FEATURE_NAME,EXPLANATION_2_ACTUAL_VALUE,EXPLANATION_2_STRENGTH
0.28,0.72,loan_amnt,20000,-0.42,term,60,0.31
`

// fakeBatchAPI emulates the batch prediction job lifecycle
type fakeBatchAPI struct {
	mu          sync.Mutex
	server      *httptest.Server
	statuses    []string
	polls       int
	uploaded    string
	created     map[string]interface{}
	result      string
	createCode  int
	authHeaders []string
}

func newFakeBatchAPI(t *testing.T, statuses ...string) *fakeBatchAPI {
	t.Helper()
	api := &fakeBatchAPI{statuses: statuses, result: sampleCSV, createCode: http.StatusAccepted}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/batchPredictions/", func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		defer api.mu.Unlock()
		api.authHeaders = append(api.authHeaders, r.Header.Get("Authorization"))

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v2/batchPredictions/":
			if api.createCode != http.StatusAccepted {
				w.WriteHeader(api.createCode)
				fmt.Fprint(w, `{"message":"nope"}`)
				return
			}
			_ = json.NewDecoder(r.Body).Decode(&api.created)
			w.WriteHeader(http.StatusAccepted)
			_ = json.NewEncoder(w).Encode(api.job(StatusInitializing))
		case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/csvUpload/"):
			body, _ := io.ReadAll(r.Body)
			api.uploaded = string(body)
			w.WriteHeader(http.StatusAccepted)
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/download/"):
			w.Header().Set("Content-Type", "text/csv")
			fmt.Fprint(w, api.result)
		case r.Method == http.MethodGet:
			status := StatusCompleted
			if api.polls < len(api.statuses) {
				status = api.statuses[api.polls]
			}
			api.polls++
			_ = json.NewEncoder(w).Encode(api.job(status))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	api.server = httptest.NewServer(mux)
	t.Cleanup(api.server.Close)
	return api
}

func (a *fakeBatchAPI) job(status string) Job {
	base := a.server.URL + "/api/v2/batchPredictions/job-1/"
	job := Job{ID: "job-1", Status: status, Links: jobLinks{Self: base, CSVUpload: base + "csvUpload/"}}
	if status == StatusCompleted {
		job.Links.Download = base + "download/"
	}
	if status == StatusFailed {
		job.StatusDetails = "model error"
	}
	return job
}

func (a *fakeBatchAPI) client() *Client {
	return NewClient(a.server.Client(), a.server.URL+"/api/v2/", "secret", "dep-123", core.MaxExplanations, 5*time.Millisecond, zap.NewNop())
}

func scoringRequest() core.ScoringRequest {
	return core.ScoringRequest{LoanAmount: 20000, Term: 60, EmploymentLength: 10, AnnualIncome: 100000}
}

func TestScore_FullJobLifecycle(t *testing.T) {
	api := newFakeBatchAPI(t, StatusRunning, StatusRunning, StatusCompleted)

	result, err := api.client().Score(context.Background(), scoringRequest())
	require.NoError(t, err)

	assert.Equal(t, 0.72, result.RiskProbability)
	assert.Equal(t, "dep-123", result.DeploymentID)
	assert.False(t, result.ScoredAt.IsZero())
	require.Len(t, result.Explanations, core.MaxExplanations)
	assert.Equal(t, core.Explanation{Present: true, FeatureName: "loan_amnt", ActualValue: "20000", Strength: -0.42}, result.Explanations[0])
	assert.Equal(t, core.Explanation{Present: true, FeatureName: "term", ActualValue: "60", Strength: 0.31}, result.Explanations[1])
	assert.False(t, result.Explanations[2].Present)

	assert.Equal(t, "loan_amnt,term,emp_length,annual_inc\n20000,60,10,100000\n", api.uploaded)
	assert.Equal(t, "dep-123", api.created["deploymentId"])
	assert.EqualValues(t, 5, api.created["maxExplanations"])
	assert.Equal(t, 3, api.polls)
	for _, h := range api.authHeaders {
		assert.Equal(t, "Bearer secret", h)
	}
}

func TestScore_JobFailed(t *testing.T) {
	api := newFakeBatchAPI(t, StatusFailed)

	_, err := api.client().Score(context.Background(), scoringRequest())
	assert.ErrorIs(t, err, core.ErrScoringJobFailed)
	assert.Contains(t, err.Error(), "model error")
}

func TestScore_Aborted(t *testing.T) {
	api := newFakeBatchAPI(t, StatusAborted)

	_, err := api.client().Score(context.Background(), scoringRequest())
	assert.ErrorIs(t, err, core.ErrScoringJobFailed)
}

func TestScore_Unauthorized(t *testing.T) {
	api := newFakeBatchAPI(t)
	api.createCode = http.StatusUnauthorized

	_, err := api.client().Score(context.Background(), scoringRequest())
	assert.ErrorIs(t, err, core.ErrScoringServiceUnavailable)
}

func TestScore_BadRequest(t *testing.T) {
	api := newFakeBatchAPI(t)
	api.createCode = http.StatusUnprocessableEntity

	_, err := api.client().Score(context.Background(), scoringRequest())
	assert.ErrorIs(t, err, core.ErrScoringJobFailed)
}

func TestScore_ServerUnreachable(t *testing.T) {
	api := newFakeBatchAPI(t)
	client := api.client()
	api.server.Close()

	_, err := client.Score(context.Background(), scoringRequest())
	assert.ErrorIs(t, err, core.ErrScoringServiceUnavailable)
}

func TestScore_ContextCancelledWhilePolling(t *testing.T) {
	statuses := make([]string, 1000)
	for i := range statuses {
		statuses[i] = StatusRunning
	}
	api := newFakeBatchAPI(t, statuses...)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := api.client().Score(ctx, scoringRequest())
	assert.ErrorIs(t, err, core.ErrScoringServiceUnavailable)
}

func TestScore_EmptyResult(t *testing.T) {
	api := newFakeBatchAPI(t, StatusCompleted)
	api.result = "is_bad_1_PREDICTION\n"

	_, err := api.client().Score(context.Background(), scoringRequest())
	assert.ErrorIs(t, err, core.ErrScoringJobFailed)
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", core.ErrScoringJobFailed},
		{"header only", "is_bad_1_PREDICTION\n", core.ErrScoringJobFailed},
		{"missing probability", "other\n0.3\n", core.ErrMalformedScoringResponse},
		{"non numeric probability", "is_bad_1_PREDICTION\nhigh\n", core.ErrMalformedScoringResponse},
		{"probability out of range", "is_bad_1_PREDICTION\n1.5\n", core.ErrMalformedScoringResponse},
		{"bad strength", "is_bad_1_PREDICTION,EXPLANATION_1_FEATURE_NAME,EXPLANATION_1_ACTUAL_VALUE,EXPLANATION_1_STRENGTH\n0.4,term,60,strong\n", core.ErrMalformedScoringResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResult(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseResult_NoExplanations(t *testing.T) {
	result, err := ParseResult(strings.NewReader("is_bad_1_PREDICTION\n0.5\n"))
	require.NoError(t, err)

	assert.Equal(t, 0.5, result.RiskProbability)
	require.Len(t, result.Explanations, core.MaxExplanations)
	for _, e := range result.Explanations {
		assert.False(t, e.Present)
	}
}

func TestParseResult_GapInRanks(t *testing.T) {
	csv := "is_bad_1_PREDICTION,EXPLANATION_1_FEATURE_NAME,EXPLANATION_1_ACTUAL_VALUE,EXPLANATION_1_STRENGTH,EXPLANATION_2_FEATURE_NAME,EXPLANATION_2_ACTUAL_VALUE,EXPLANATION_2_STRENGTH,EXPLANATION_3_FEATURE_NAME,EXPLANATION_3_ACTUAL_VALUE,EXPLANATION_3_STRENGTH\n" +
		"0.6,annual_inc,15000,0.5,,,,emp_length,0,0.2\n"

	result, err := ParseResult(strings.NewReader(csv))
	require.NoError(t, err)

	assert.True(t, result.Explanations[0].Present)
	assert.False(t, result.Explanations[1].Present)
	assert.True(t, result.Explanations[2].Present)
	assert.Equal(t, "emp_length", result.Explanations[2].FeatureName)

	triples := core.ExtractExplanations(result, core.ChartExplanationCount)
	require.Len(t, triples, 2)
	assert.Equal(t, "Annual Income", triples[0].Label)
	assert.Equal(t, "Employment Years", triples[1].Label)
}
