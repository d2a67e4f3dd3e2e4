package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/khrees2412/applytrack/pkg/models"
	"go.uber.org/zap"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoBaseURL    = errors.New("api base url is not configured")

	errUnexpectedShape = errors.New("unexpected response shape")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is match ErrNotFound and ErrUnauthorized by status code.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// Client talks to the job/application backend over HTTP/JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    trimmed,
		httpClient: httpClient,
		logger:     logger,
	}
}

type updateStatusRequest struct {
	ApplicantID string               `json:"applicantId"`
	JobID       string               `json:"jobId"`
	Status      models.BackendStatus `json:"status"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MyApplications returns the applications of the token's owner.
func (c *Client) MyApplications(ctx context.Context, token string) ([]models.ApplicationRecord, error) {
	var records []models.ApplicationRecord
	if err := c.getList(ctx, token, "/applications/mine", &records, "applications"); err != nil {
		return nil, err
	}
	return records, nil
}

// AllApplications returns every application known to the backend, unfiltered.
func (c *Client) AllApplications(ctx context.Context, token string) ([]models.ApplicationRecord, error) {
	var records []models.ApplicationRecord
	if err := c.getList(ctx, token, "/applications/all", &records, "applications"); err != nil {
		return nil, err
	}
	return records, nil
}

// JobsByOwner returns the jobs posted by a recruiter.
func (c *Client) JobsByOwner(ctx context.Context, token, recruiterID string) ([]models.Job, error) {
	var jobs []models.Job
	path := "/jobs/by-owner/" + url.PathEscape(recruiterID)
	if err := c.getList(ctx, token, path, &jobs, "jobs"); err != nil {
		return nil, err
	}
	return jobs, nil
}

// Job returns a single job. An empty document yields a zero Job and no error.
func (c *Client) Job(ctx context.Context, token, jobID string) (*models.Job, error) {
	var job models.Job
	if err := c.getObject(ctx, token, "/jobs/"+url.PathEscape(jobID), &job, "job"); err != nil {
		return nil, err
	}
	return &job, nil
}

// Applicant returns a user profile. An empty document yields a zero Applicant.
func (c *Client) Applicant(ctx context.Context, token, applicantID string) (*models.Applicant, error) {
	var applicant models.Applicant
	if err := c.getObject(ctx, token, "/users/"+url.PathEscape(applicantID), &applicant, "user"); err != nil {
		return nil, err
	}
	return &applicant, nil
}

// UpdateStatus persists a new backend status for one application.
func (c *Client) UpdateStatus(ctx context.Context, token, applicantID, jobID string, status models.BackendStatus) error {
	payload := updateStatusRequest{ApplicantID: applicantID, JobID: jobID, Status: status}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode status update: %w", err)
	}
	_, err = c.do(ctx, http.MethodPut, "/applications/status", token, body)
	return err
}

// getList decodes either a bare JSON array or an object wrapping the array
// under "data" or envelopeKey.
func (c *Client) getList(ctx context.Context, token, path string, out any, envelopeKey string) error {
	payload, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return err
	}
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	}
	raw, err := unwrapEnvelope(trimmed, envelopeKey)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	// an object without a known list key is not an empty list
	if raw == nil {
		return fmt.Errorf("decode %s: %w", path, errUnexpectedShape)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// getObject decodes a single document, accepting {"data": {...}} or
// {envelopeKey: {...}} as well as the bare object.
func (c *Client) getObject(ctx context.Context, token, path string, out any, envelopeKey string) error {
	payload, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return err
	}
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	raw, err := unwrapEnvelope(trimmed, envelopeKey)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if raw == nil {
		raw = trimmed
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func unwrapEnvelope(payload []byte, key string) (json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, err
	}
	for _, k := range []string{"data", key} {
		if raw, ok := envelope[k]; ok {
			return raw, nil
		}
	}
	return nil, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body []byte) ([]byte, error) {
	if c.baseURL == "" {
		return nil, ErrNoBaseURL
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token = strings.TrimSpace(token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("request_id", requestID))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(payload)}
	}
	return payload, nil
}

func errorMessage(payload []byte) string {
	var parsed errorResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return strings.TrimSpace(string(payload))
	}
	if parsed.Error != "" {
		return parsed.Error
	}
	return parsed.Message
}
