// Package riskapi provides a typed HTTP client for the external cash-flow
// scoring service (/predict, /stats, /logs, /audit-logs).
package riskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fairlens/riskwatch/internal/models"
)

// APIError is the single error kind surfaced for live calls: HTTP errors
// carrying the server-supplied detail, empty bodies, and malformed JSON.
// A 2xx with an unparseable body is still an error; that is a contract
// violation on the service side.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to the scoring service. It performs no retries and no
// caching: every call is at most one round trip, and a failed call is
// recovered by re-invoking it.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a scoring service client with the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Predict submits a feature vector and returns the decision pair. On a
// non-2xx response the raw body text becomes the failure reason.
func (c *Client) Predict(ctx context.Context, features models.RiskFeatures) (models.RiskDecision, error) {
	var decision models.RiskDecision

	payload, err := json.Marshal(features)
	if err != nil {
		return decision, fmt.Errorf("failed to encode features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return decision, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decision, fmt.Errorf("prediction request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decision, fmt.Errorf("failed to read prediction response: %w", err)
	}

	if !is2xx(resp.StatusCode) {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("prediction failed with status %d", resp.StatusCode)
		}
		return decision, &APIError{Status: resp.StatusCode, Message: msg}
	}

	if err := parsePayload("prediction", resp.StatusCode, body, &decision); err != nil {
		return decision, err
	}
	return decision, nil
}

// Stats fetches the aggregate prediction statistics.
func (c *Client) Stats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	if err := c.get(ctx, "/stats", nil, "stats", &stats); err != nil {
		return models.Stats{}, err
	}
	return stats, nil
}

// Logs fetches a page of historical scoring records.
func (c *Client) Logs(ctx context.Context, page, limit int) (models.LogsPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var logs models.LogsPage
	if err := c.get(ctx, "/logs", q, "logs", &logs); err != nil {
		return models.LogsPage{}, err
	}
	return logs, nil
}

// AuditFilters narrows an audit log query. Empty fields are omitted from
// the request.
type AuditFilters struct {
	Status string
	Search string
}

// AuditLogs fetches a page of audit trail records, forwarding filters as
// query parameters.
func (c *Client) AuditLogs(ctx context.Context, page, limit int, filters AuditFilters) (models.AuditLogsPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if status := normalizeStatus(filters.Status); status != "" {
		q.Set("status", status)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		q.Set("search", search)
	}

	var logs models.AuditLogsPage
	if err := c.get(ctx, "/audit-logs", q, "audit logs", &logs); err != nil {
		return models.AuditLogsPage{}, err
	}
	return logs, nil
}

func normalizeStatus(status string) string {
	if status == "" || status == "all" {
		return ""
	}
	return status
}

// get performs a single uncached GET and decodes the response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, label string, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", label, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", label, err)
	}

	if !is2xx(resp.StatusCode) {
		return &APIError{Status: resp.StatusCode, Message: errorDetail(resp.StatusCode, body)}
	}

	return parsePayload(label, resp.StatusCode, body, out)
}

// errorDetail extracts the server-supplied detail message from an error
// body, falling back to a generic message when the body carries none.
func errorDetail(status int, body []byte) string {
	fallback := fmt.Sprintf("request failed (%d)", status)
	if len(bytes.TrimSpace(body)) == 0 {
		return fallback
	}

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Detail == "" {
		return fallback
	}
	return payload.Detail
}

// parsePayload decodes a 2xx body, treating emptiness and malformed JSON
// as labeled errors.
func parsePayload(label string, status int, body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return &APIError{Status: status, Message: fmt.Sprintf("%s returned empty response (%d)", label, status)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Status: status, Message: fmt.Sprintf("%s returned invalid JSON (%d)", label, status)}
	}
	return nil
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}
