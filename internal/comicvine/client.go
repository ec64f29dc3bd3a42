package comicvine

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"comicvault/internal/logger"
)

const (
	defaultBaseURL = "https://comicvine.gamespot.com/api"
	appName        = "ComicVault"
)

// Client is a client for the ComicVine API. The API key never leaves the
// server; browsers talk to the proxy endpoints instead.

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new ComicVine API client.

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FetchJSON fetches JSON data from the given URL, adding the API key and
// format parameters.
func (c *Client) FetchJSON(rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	q.Set("api_key", c.APIKey)
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	maxRetries := 3
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			sleepDuration := time.Duration(1<<uint(i)) * time.Second
			time.Sleep(sleepDuration)
			logger.Info("Retry %d/%d for URL: %s", i+1, maxRetries, u.Path)
		}

		req, err := http.NewRequest("GET", u.String(), nil)
		if err != nil {
			lastErr = fmt.Errorf("error creating request: %v", err)
			continue
		}

		req.Header.Set("User-Agent", fmt.Sprintf("%s/1.0", appName))
		req.Header.Set("Accept", "application/json")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("error making request: %v", err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("API returned non-200 status code %d: %s", resp.StatusCode, string(body))
			if resp.StatusCode == http.StatusTooManyRequests {
				logger.Warn("Rate limit hit, waiting before retry")
			}
			continue
		}

		if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "" {
			if rem, err := strconv.Atoi(remaining); err == nil && rem < 5 {
				logger.Warn("Rate limit remaining is low: %d", rem)
			}
		}

		if readErr != nil {
			lastErr = fmt.Errorf("error reading response body: %v", readErr)
			continue
		}

		var js map[string]interface{}
		if err := json.Unmarshal(body, &js); err != nil {
			lastErr = fmt.Errorf("invalid JSON response: %v", err)
			continue
		}

		return body, nil
	}

	return nil, fmt.Errorf("failed after %d retries. Last error: %v", maxRetries, lastErr)
}

// Search runs a volume search and returns the provider response verbatim.
func (c *Client) Search(query string, limit int) ([]byte, error) {
	if limit <= 0 {
		limit = 10
	}
	searchURL := fmt.Sprintf("%s/search/?query=%s&limit=%d&resources=volume",
		c.BaseURL, url.QueryEscape(query), limit)
	return c.FetchJSON(searchURL)
}

// Detail fetches a provider detail record by its api_detail_url. The URL is
// caller-supplied, so it must stay on the provider's host.
func (c *Client) Detail(detailURL string) ([]byte, error) {
	if err := c.checkHost(detailURL); err != nil {
		return nil, err
	}
	return c.FetchJSON(detailURL)
}

func (c *Client) checkHost(rawURL string) error {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse detail url: %w", err)
	}
	if u.Host != base.Host {
		return fmt.Errorf("detail url host %q not allowed", u.Host)
	}
	return nil
}
