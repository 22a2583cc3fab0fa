// Package client holds outbound service clients. Remote calls are
// best-effort and never transactional with the local store.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 30 * time.Second

// GistFile is one file inside a gist request
type GistFile struct {
	Content string `json:"content"`
}

// GistRequest is the outbound wire shape of the gist API
type GistRequest struct {
	Description string              `json:"description"`
	Public      bool                `json:"public"`
	Files       map[string]GistFile `json:"files"`
}

// GistResponse is the subset of the gist API response the app consumes
type GistResponse struct {
	ID          string `json:"id"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description,omitempty"`
}

// GistClient wraps the remote gist-style document API
type GistClient struct {
	http *resty.Client
}

// NewGistClient creates a client for the gist API at baseURL. The token is
// optional; without it the API only accepts anonymous operations.
func NewGistClient(baseURL, token string) *GistClient {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("Content-Type", "application/json")

	if token != "" {
		http.SetAuthToken(token)
	}

	return &GistClient{http: http}
}

// CreateGist submits a new gist and returns its assigned id and URL
func (c *GistClient) CreateGist(ctx context.Context, req *GistRequest) (*GistResponse, error) {
	out := &GistResponse{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(out).
		Post("/gists")
	if err != nil {
		return nil, fmt.Errorf("gist create request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("gist create rejected: %s: %s", resp.Status(), resp.String())
	}
	return out, nil
}

// UpdateGist patches an existing gist in place
func (c *GistClient) UpdateGist(ctx context.Context, id string, req *GistRequest) (*GistResponse, error) {
	out := &GistResponse{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(out).
		Patch("/gists/" + id)
	if err != nil {
		return nil, fmt.Errorf("gist update request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("gist update rejected: %s: %s", resp.Status(), resp.String())
	}
	return out, nil
}
