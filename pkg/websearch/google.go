package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"ai-copilot-be/internal/pkg/logger"
)

const customSearchEndpoint = "https://www.googleapis.com/customsearch/v1"

// Client runs one search query and returns ranked results. Implementations
// degrade to an empty slice on provider failure so a broken search never
// blocks the insight pipeline.
type Client interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// GoogleClient searches through the Google Custom Search JSON API, scoped to
// Italian results.
type GoogleClient struct {
	apiKey     string
	cx         string
	httpClient *http.Client
	log        logger.ILogger
	now        func() time.Time
}

func NewGoogleClient(apiKey, cx string, timeout time.Duration, log logger.ILogger) *GoogleClient {
	return &GoogleClient{
		apiKey:     apiKey,
		cx:         cx,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
		now:        time.Now,
	}
}

// Configured reports whether the client has the credentials it needs to call
// the API at all.
func (c *GoogleClient) Configured() bool {
	return c.apiKey != "" && c.cx != ""
}

type googleSearchResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Snippet     string `json:"snippet"`
		Link        string `json:"link"`
		DisplayLink string `json:"displayLink"`
	} `json:"items"`
}

func (c *GoogleClient) Search(ctx context.Context, query string) ([]Result, error) {
	if !c.Configured() {
		c.log.Warn("websearch", "search skipped, missing credentials", nil)
		return nil, nil
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.cx)
	params.Set("q", query)
	params.Set("num", "10")
	params.Set("safe", "active")
	params.Set("lr", "lang_it")
	params.Set("gl", "it")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, customSearchEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("websearch", "search request failed", map[string]interface{}{"error": err.Error()})
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("websearch", "search returned non-200", map[string]interface{}{"status": resp.StatusCode})
		return nil, nil
	}

	var parsed googleSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.log.Warn("websearch", "search response decode failed", map[string]interface{}{"error": err.Error()})
		return nil, nil
	}

	results := make([]Result, 0, len(parsed.Items))
	cachedAt := c.now()
	for _, item := range parsed.Items {
		results = append(results, Result{
			Title:       item.Title,
			Snippet:     item.Snippet,
			Link:        item.Link,
			DisplayLink: item.DisplayLink,
			CachedAt:    cachedAt,
		})
	}
	return results, nil
}
