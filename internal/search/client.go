// Package search talks to the external semantic catalog search service.
// The service is an opaque collaborator: it receives a query string and a
// top-k and returns scored matches; indexing happens out of band via the
// task queue.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Request is the search payload sent to the service.
type Request struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// Result is one scored catalog match returned by the service.
type Result struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title,omitempty"`
	Author      string  `json:"author,omitempty"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Score       float64 `json:"score"`
}

// Document is a catalog record pushed to the service's index.
type Document struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description,omitempty"`
	ISBN        string `json:"isbn,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Client calls the search service over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a search client. An empty baseURL disables search; use
// Enabled to check before calling.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// Enabled reports whether a search service is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// Search sends the query and returns scored matches.
func (c *Client) Search(ctx context.Context, req Request) ([]Result, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("search service not configured")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("query search service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search service returned status %d", resp.StatusCode)
	}

	var results []Result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return results, nil
}

// Index pushes a catalog document to the service's index. Called from the
// background task queue, never from request handlers.
func (c *Client) Index(ctx context.Context, doc Document) error {
	if !c.Enabled() {
		return nil
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode index document: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/index", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("push index document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("search service returned status %d", resp.StatusCode)
	}
	return nil
}
