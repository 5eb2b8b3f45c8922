// Package places wraps the external search API that returns business
// metadata for a free-text query or a place identifier.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://serpapi.com/search.json"

// Searcher is the lookup surface the enrichment client depends on.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) (map[string]any, error)
}

// SearchRequest is one lookup: either PlaceID or Query must be set.
// Location and the locale fields are optional refinements.
type SearchRequest struct {
	PlaceID  string
	Query    string
	Location string
}

// Client calls the search API over HTTP. The response shape is not
// guaranteed, so results are returned as a decoded JSON tree and parsing
// is left to the caller.
type Client struct {
	APIKey       string
	Engine       string
	HL           string
	GL           string
	GoogleDomain string
	BaseURL      string

	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:     apiKey,
		Engine:     "google_maps",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Search(ctx context.Context, req SearchRequest) (map[string]any, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("search API key not configured")
	}
	if req.PlaceID == "" && req.Query == "" {
		return nil, fmt.Errorf("search request needs a query or a place id")
	}

	params := url.Values{}
	params.Set("engine", c.Engine)
	params.Set("api_key", c.APIKey)
	if req.PlaceID != "" {
		params.Set("place_id", req.PlaceID)
	} else {
		params.Set("q", req.Query)
	}
	if req.Location != "" {
		params.Set("location", req.Location)
	}
	if c.HL != "" {
		params.Set("hl", c.HL)
	}
	if c.GL != "" {
		params.Set("gl", c.GL)
	}
	if c.GoogleDomain != "" {
		params.Set("google_domain", c.GoogleDomain)
	}

	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned %s: %s", resp.Status, truncate(body, 200))
	}

	var tree map[string]any
	if err := json.Unmarshal(body, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if msg, ok := tree["error"].(string); ok && msg != "" {
		return nil, fmt.Errorf("search API error: %s", msg)
	}
	return tree, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
