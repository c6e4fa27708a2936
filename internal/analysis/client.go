// Package analysis calls the external AI progress-analysis endpoint.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrRateLimited is returned when the analysis endpoint answers 429.
// It is a distinguished, user-visible failure mode.
var ErrRateLimited = errors.New("analysis endpoint rate limited")

// GroupStats is the aggregated payload sent for summarization.
type GroupStats struct {
	GroupName    string          `json:"group_name"`
	DonationType string          `json:"donation_type"`
	Goal         string          `json:"goal"`
	TotalRaised  string          `json:"total_raised"`
	MemberCount  int             `json:"member_count"`
	Timeline     []TimelinePoint `json:"timeline"`
	Ranking      []RankingEntry  `json:"ranking"`
}

type TimelinePoint struct {
	Date       string `json:"date"`
	Amount     string `json:"amount"`
	Cumulative string `json:"cumulative"`
}

type RankingEntry struct {
	Name             string `json:"name"`
	TotalContributed string `json:"total_contributed"`
	GoalsReached     int    `json:"goals_reached"`
}

// Summary is the structured response from the analysis endpoint.
type Summary struct {
	Summary    string   `json:"summary"`
	Insights   []string `json:"insights"`
	Prediction string   `json:"prediction"`
}

// Client is an HTTP client for the analysis collaborator. The endpoint
// is opaque and potentially slow, so every call carries a timeout.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled reports whether an analysis endpoint is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// Analyze posts the aggregated stats and returns the structured summary.
func (c *Client) Analyze(ctx context.Context, stats *GroupStats) (*Summary, error) {
	body, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("marshal stats: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("analysis endpoint returned %d: %s", resp.StatusCode, data)
	}

	summary := &Summary{}
	if err := json.NewDecoder(resp.Body).Decode(summary); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return summary, nil
}
