package datarobot

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mikey/loan-approval/internal/core"
	"go.uber.org/zap"
)

// Batch job statuses
const (
	StatusInitializing = "INITIALIZING"
	StatusRunning      = "RUNNING"
	StatusCompleted    = "COMPLETED"
	StatusAborted      = "ABORTED"
	StatusFailed       = "FAILED"
)

// PredictionColumn is the positive-class probability column of the deployment
const PredictionColumn = "is_bad_1_PREDICTION"

// Client is an implementation of the ScoringClient interface using the
// DataRobot batch prediction API
type Client struct {
	httpClient      *http.Client
	endpoint        string
	apiToken        string
	deploymentID    string
	maxExplanations int
	pollInterval    time.Duration
	logger          *zap.Logger
}

type intakeSettings struct {
	Type string `json:"type"`
}

type createJobRequest struct {
	DeploymentID    string         `json:"deploymentId"`
	MaxExplanations int            `json:"maxExplanations"`
	IntakeSettings  intakeSettings `json:"intakeSettings"`
	OutputSettings  intakeSettings `json:"outputSettings"`
}

type jobLinks struct {
	Self      string `json:"self"`
	CSVUpload string `json:"csvUpload"`
	Download  string `json:"download"`
}

// Job is the batch prediction job resource
type Job struct {
	ID            string   `json:"id"`
	Status        string   `json:"status"`
	StatusDetails string   `json:"statusDetails"`
	Links         jobLinks `json:"links"`
}

// NewClient creates a new DataRobot scoring client
func NewClient(
	httpClient *http.Client,
	endpoint string,
	apiToken string,
	deploymentID string,
	maxExplanations int,
	pollInterval time.Duration,
	logger *zap.Logger,
) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Client{
		httpClient:      httpClient,
		endpoint:        strings.TrimRight(endpoint, "/"),
		apiToken:        apiToken,
		deploymentID:    deploymentID,
		maxExplanations: maxExplanations,
		pollInterval:    pollInterval,
		logger:          logger,
	}
}

// Score submits req as a one-row batch job and blocks until its result is available
func (c *Client) Score(ctx context.Context, req core.ScoringRequest) (*core.ScoringResult, error) {
	job, err := c.createJob(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Created batch prediction job", zap.String("job_id", job.ID))

	if err := c.upload(ctx, job.Links.CSVUpload, req); err != nil {
		return nil, err
	}

	job, err = c.wait(ctx, job)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodGet, job.Links.Download, "", nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	result, err := ParseResult(body)
	if err != nil {
		return nil, err
	}
	result.DeploymentID = c.deploymentID
	result.ScoredAt = time.Now()
	return result, nil
}

func (c *Client) createJob(ctx context.Context) (*Job, error) {
	payload, err := json.Marshal(createJobRequest{
		DeploymentID:    c.deploymentID,
		MaxExplanations: c.maxExplanations,
		IntakeSettings:  intakeSettings{Type: "localFile"},
		OutputSettings:  intakeSettings{Type: "localFile"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch job request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, c.endpoint+"/batchPredictions/", "application/json", payload)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return decodeJob(body)
}

func (c *Client) upload(ctx context.Context, url string, req core.ScoringRequest) error {
	if url == "" {
		return fmt.Errorf("%w: job has no upload link", core.ErrMalformedScoringResponse)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{core.FeatureLoanAmount, core.FeatureTerm, core.FeatureEmploymentLength, core.FeatureAnnualIncome})
	_ = w.Write([]string{
		strconv.Itoa(req.LoanAmount),
		strconv.Itoa(req.Term),
		strconv.Itoa(req.EmploymentLength),
		strconv.Itoa(req.AnnualIncome),
	})
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to encode scoring row: %w", err)
	}

	body, err := c.do(ctx, http.MethodPut, url, "text/csv", buf.Bytes())
	if err != nil {
		return err
	}
	return body.Close()
}

// wait polls the job until it reaches a terminal status
func (c *Client) wait(ctx context.Context, job *Job) (*Job, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		switch job.Status {
		case StatusCompleted:
			if job.Links.Download == "" {
				return nil, fmt.Errorf("%w: completed job has no download link", core.ErrMalformedScoringResponse)
			}
			return job, nil
		case StatusAborted, StatusFailed:
			return nil, fmt.Errorf("%w: job %s %s: %s", core.ErrScoringJobFailed, job.ID, strings.ToLower(job.Status), job.StatusDetails)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: waiting for job %s: %v", core.ErrScoringServiceUnavailable, job.ID, ctx.Err())
		case <-ticker.C:
		}

		self := job.Links.Self
		if self == "" {
			return nil, fmt.Errorf("%w: job has no status link", core.ErrMalformedScoringResponse)
		}
		body, err := c.do(ctx, http.MethodGet, self, "", nil)
		if err != nil {
			return nil, err
		}
		next, err := decodeJob(body)
		body.Close()
		if err != nil {
			return nil, err
		}
		c.logger.Debug("Polled batch prediction job", zap.String("job_id", next.ID), zap.String("status", next.Status))
		job = next
	}
}

// do performs an authenticated request and maps transport and status failures
// onto the scoring error taxonomy. The caller closes the returned body.
func (c *Client) do(ctx context.Context, method, url, contentType string, payload []byte) (io.ReadCloser, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrScoringServiceUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.Body, nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s %s returned %d: %s", core.ErrScoringServiceUnavailable, method, url, resp.StatusCode, strings.TrimSpace(string(detail)))
	default:
		return nil, fmt.Errorf("%w: %s %s returned %d: %s", core.ErrScoringJobFailed, method, url, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
}

func decodeJob(r io.Reader) (*Job, error) {
	var job Job
	if err := json.NewDecoder(r).Decode(&job); err != nil {
		return nil, fmt.Errorf("%w: cannot decode job: %v", core.ErrMalformedScoringResponse, err)
	}
	return &job, nil
}

// ParseResult reads a scoring CSV and returns its first row.
// Explanation ranks whose feature column is missing or empty are marked absent.
func ParseResult(r io.Reader) (*core.ScoringResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty result", core.ErrScoringJobFailed)
		}
		return nil, fmt.Errorf("%w: cannot read header: %v", core.ErrMalformedScoringResponse, err)
	}
	row, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: result has no rows", core.ErrScoringJobFailed)
		}
		return nil, fmt.Errorf("%w: cannot read row: %v", core.ErrMalformedScoringResponse, err)
	}

	cols := make(map[string]string, len(header))
	for i, name := range header {
		if i < len(row) {
			cols[strings.TrimSpace(name)] = strings.TrimSpace(row[i])
		}
	}

	raw, ok := cols[PredictionColumn]
	if !ok || raw == "" {
		return nil, fmt.Errorf("%w: missing column %s", core.ErrMalformedScoringResponse, PredictionColumn)
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil || p < 0 || p > 1 {
		return nil, fmt.Errorf("%w: invalid probability %q", core.ErrMalformedScoringResponse, raw)
	}

	result := &core.ScoringResult{
		RiskProbability: p,
		Explanations:    make([]core.Explanation, core.MaxExplanations),
	}
	for i := 1; i <= core.MaxExplanations; i++ {
		name := cols[fmt.Sprintf("EXPLANATION_%d_FEATURE_NAME", i)]
		if name == "" {
			continue
		}
		rawStrength := cols[fmt.Sprintf("EXPLANATION_%d_STRENGTH", i)]
		strength, err := strconv.ParseFloat(rawStrength, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid strength %q for explanation %d", core.ErrMalformedScoringResponse, rawStrength, i)
		}
		result.Explanations[i-1] = core.Explanation{
			Present:     true,
			FeatureName: name,
			ActualValue: cols[fmt.Sprintf("EXPLANATION_%d_ACTUAL_VALUE", i)],
			Strength:    strength,
		}
	}

	return result, nil
}
