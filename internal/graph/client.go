package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adpilot/adpilot/internal/config"
	"go.uber.org/zap"
)

// Client issues form-encoded calls against the Meta Graph API. One
// client serves both the Facebook and Instagram publish paths; all
// credentials and account identifiers are fixed at construction.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	accountID   string
	pageID      string
	adsetTZ     *time.Location
	logger      *zap.Logger
}

// NewClient constructs a Graph API client from configuration.
func NewClient(cfg config.GraphConfig, sched config.ScheduleConfig, logger *zap.Logger) (*Client, error) {
	loc, err := time.LoadLocation(sched.AdSetTZ)
	if err != nil {
		return nil, fmt.Errorf("failed to load ad-set timezone %q: %w", sched.AdSetTZ, err)
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL(),
		accessToken: cfg.AccessToken,
		accountID:   cfg.AccountID,
		pageID:      cfg.PageID,
		adsetTZ:     loc,
		logger:      logger,
	}, nil
}

// graphError is the error payload the Graph API attaches to failed calls.
type graphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// graphResponse covers the response shapes the publish paths consume.
type graphResponse struct {
	ID      string      `json:"id"`
	Success *bool       `json:"success"`
	Error   *graphError `json:"error"`

	InstagramBusinessAccount *struct {
		ID string `json:"id"`
	} `json:"instagram_business_account"`
}

// errorMessage extracts the remote error message, or a placeholder
// when the response carried none.
func (r *graphResponse) errorMessage() string {
	if r.Error != nil && r.Error.Message != "" {
		return r.Error.Message
	}
	return "unknown error"
}

// postForm issues a form-encoded POST to path (relative to the
// versioned API root) with the access token attached.
func (c *Client) postForm(ctx context.Context, path string, form url.Values) (*graphResponse, error) {
	form.Set("access_token", c.accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	var out graphResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", path, err)
	}

	return &out, nil
}

// get issues a GET to path with the access token attached as a query
// parameter.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*graphResponse, error) {
	query.Set("access_token", c.accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	var out graphResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", path, err)
	}

	return &out, nil
}
