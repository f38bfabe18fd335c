package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultAPIURL is the Notion REST API endpoint.
	DefaultAPIURL = "https://api.notion.com/v1"

	// NotionVersion is the API version header value.
	NotionVersion = "2022-06-28"

	// Notion allows an average of 3 requests per second per integration.
	requestsPerSecond = 3
)

// Client is the Notion REST API client.
type Client struct {
	token      string
	apiURL     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Notion API client with the given integration token.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		apiURL:     DefaultAPIURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

// SetAPIURL overrides the default Notion API URL for testing purposes.
func (c *Client) SetAPIURL(url string) {
	c.apiURL = url
}

// CreatePage creates a new page in the request's database.
func (c *Client) CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error) {
	body := map[string]interface{}{
		"parent":     map[string]string{"database_id": req.DatabaseID},
		"properties": req.Properties,
	}
	if len(req.Children) > 0 {
		body["children"] = req.Children
	}

	var page Page
	if err := c.call(ctx, http.MethodPost, "/pages", body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdatePage patches properties of an existing page.
func (c *Client) UpdatePage(ctx context.Context, pageID string, req UpdatePageRequest) (*Page, error) {
	var page Page
	if err := c.call(ctx, http.MethodPatch, "/pages/"+pageID, req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ArchivePage archives (soft-deletes) a page.
func (c *Client) ArchivePage(ctx context.Context, pageID string) (*Page, error) {
	archived := true
	return c.UpdatePage(ctx, pageID, UpdatePageRequest{Archived: &archived})
}

// Ping verifies the integration token by fetching the bot user.
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/users/me", nil, nil)
}

// call performs one rate-limited API request and decodes the response into out.
func (c *Client) call(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("notion: rate limiter wait: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("notion: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("notion: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Notion-Version", NotionVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("notion: failed to call API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = string(raw)
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("notion: failed to decode response: %w", err)
		}
	}
	return nil
}
