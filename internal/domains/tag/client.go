package tag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// =====================================================
// SUGGESTION SERVICE CLIENT
// =====================================================

type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a client for the external tag-suggestion service.
func NewClient(config *Config) Suggester {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Suggest calls the suggestion service with the draft title and
// description and returns the proposed tags.
func (c *Client) Suggest(ctx context.Context, title, description string) ([]string, error) {
	// Step 1: Build request body
	requestBody := map[string]interface{}{
		"title":       title,
		"description": description,
	}

	bodyJSON, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Step 2: Call suggestion API
	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.config.SuggestURL(), bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call suggestion API: %w", err)
	}
	defer resp.Body.Close()

	// Step 3: Parse response
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("suggestion API returned status %d", resp.StatusCode)
	}

	var respData struct {
		Tags []string `json:"tags"`
	}
	if err := json.Unmarshal(bodyBytes, &respData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if respData.Tags == nil {
		respData.Tags = []string{}
	}

	return respData.Tags, nil
}
