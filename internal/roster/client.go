// Package roster fetches course enrollment from the Canvas LMS API.
package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// linkNextRe extracts the "next" URL from the Link header. Canvas returns:
// <https://...?page=2&per_page=100>; rel="next", ...
var linkNextRe = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// Student is one roster entry. Email may be empty when the enrollment has
// no institutional address; callers must treat that as a skip, not an error.
type Student struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Source is the roster interface the orchestrator consumes.
type Source interface {
	GetStudents(ctx context.Context, courseID string) ([]Student, error)
}

// Client is a minimal Canvas API client for roster retrieval.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewClient creates a new Canvas API client.
func NewClient(endpoint, token string) *Client {
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// GetStudents returns every student enrolled in the course. Pagination is
// handled internally; callers see a single list.
func (c *Client) GetStudents(ctx context.Context, courseID string) ([]Student, error) {
	params := url.Values{}
	params.Set("enrollment_type[]", "student")
	params.Set("per_page", "100")

	next := fmt.Sprintf("%s/api/v1/courses/%s/users?%s", c.endpoint, url.PathEscape(courseID), params.Encode())

	var all []Student
	for next != "" {
		page, nextURL, err := c.getPage(ctx, next)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		next = nextURL
	}
	return all, nil
}

// getPage fetches one page and returns the next page's URL, if any.
// After the first request the query parameters are baked into the next URL.
func (c *Client) getPage(ctx context.Context, pageURL string) ([]Student, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build roster request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("roster request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read roster response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("canvas API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var students []Student
	if err := json.Unmarshal(body, &students); err != nil {
		return nil, "", fmt.Errorf("parse roster response: %w", err)
	}

	next := ""
	if match := linkNextRe.FindStringSubmatch(resp.Header.Get("Link")); match != nil {
		next = match[1]
	}
	return students, next, nil
}
