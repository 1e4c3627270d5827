// Package github is a minimal GitHub client covering issue creation
// over REST and Projects v2 over GraphQL.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/annosync/internal/core/logging"
)

const (
	defaultAPIURL     = "https://api.github.com"
	defaultGraphQLURL = "https://api.github.com/graphql"

	userAgent = "annosync"
)

// Client calls the GitHub APIs with a server-held bearer token.
type Client struct {
	apiURL     string
	graphqlURL string
	token      string
	http       *http.Client
	log        zerolog.Logger
}

// New creates a Client against github.com.
func New(token string) *Client {
	return NewWithURLs(token, defaultAPIURL, defaultGraphQLURL)
}

// NewWithURLs creates a Client against custom endpoints (GitHub
// Enterprise, tests). Empty URLs fall back to github.com.
func NewWithURLs(token, apiURL, graphqlURL string) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	if graphqlURL == "" {
		graphqlURL = defaultGraphQLURL
	}
	return &Client{
		apiURL:     strings.TrimSuffix(apiURL, "/"),
		graphqlURL: graphqlURL,
		token:      token,
		http:       &http.Client{Timeout: 15 * time.Second},
		log:        logging.Component("github"),
	}
}

// APIError is a non-2xx response from GitHub.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: status %d: %s", e.StatusCode, e.Message)
}

// IssueParams are the fields for issue creation.
type IssueParams struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels,omitempty"`
}

// Issue is the subset of the created-issue response the service needs.
type Issue struct {
	Number  int    `json:"number"`
	NodeID  string `json:"node_id"`
	HTMLURL string `json:"html_url"`
}

// CreateIssue creates one issue. Non-2xx responses return *APIError.
func (c *Client) CreateIssue(ctx context.Context, owner, repo string, params IssueParams) (*Issue, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/issues", c.apiURL, owner, repo)

	payload, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode issue: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	defer c.closeBody(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.apiError(resp)
	}

	var issue Issue
	if err := json.NewDecoder(resp.Body).Decode(&issue); err != nil {
		return nil, fmt.Errorf("decode issue response: %w", err)
	}

	return &issue, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+c.token)
}

func (c *Client) closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.log.Debug().Err(err).Msg("close github response body")
	}
}

// apiError extracts the "message" field GitHub error bodies carry.
func (c *Client) apiError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))

	var parsed struct {
		Message string `json:"message"`
	}
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		message = parsed.Message
	}

	return &APIError{StatusCode: resp.StatusCode, Message: message}
}
