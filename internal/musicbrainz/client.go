// Package musicbrainz provides the MusicBrainz lookups used for genre
// enrichment: release-group search and release-group tag retrieval.
package musicbrainz

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const (
	baseURL        = "https://musicbrainz.org/ws/2"
	defaultContact = "https://github.com/lverne/tagtidy"
	rateLimitDur   = time.Second // MusicBrainz requires 1 request per second

	// Retry configuration
	maxRetries   = 3
	initialDelay = 2 * time.Second
	maxDelay     = 30 * time.Second
)

// minVotes is the minimum tag vote count for a tag to count as a genre.
const minVotes = 1

// Client provides access to the MusicBrainz API. The rate limiter state
// lives on the client, one limiter per client instance.
type Client struct {
	httpClient  *http.Client
	userAgent   string
	lastRequest time.Time
	mu          sync.Mutex
}

// NewClient creates a new MusicBrainz API client. An empty contact falls
// back to the project URL; MusicBrainz asks every client to identify
// itself with a reachable contact.
func NewClient(contact string) *Client {
	if contact == "" {
		contact = defaultContact
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  fmt.Sprintf("tagtidy/0.1 (%s)", contact),
	}
}

// SearchReleaseGroup searches for a release group by album title and
// artist name, returning the best match's MBID or empty when nothing
// matches.
func (c *Client) SearchReleaseGroup(album, artistName string) (string, error) {
	params := url.Values{}
	params.Set("query", fmt.Sprintf("releasegroup:%q AND artist:%q", album, artistName))
	params.Set("fmt", "json")
	params.Set("limit", "1")

	reqURL := fmt.Sprintf("%s/release-group?%s", baseURL, params.Encode())

	var result releaseGroupSearchResponse
	if err := c.getJSON(reqURL, &result); err != nil {
		return "", err
	}

	if len(result.ReleaseGroups) == 0 {
		return "", nil
	}
	return result.ReleaseGroups[0].ID, nil
}

// ReleaseGroupGenres fetches the genre tags of a release group. Tags with
// at least one vote are returned in catalog order.
func (c *Client) ReleaseGroupGenres(mbid string) ([]string, error) {
	params := url.Values{}
	params.Set("fmt", "json")
	params.Set("inc", "tags")

	reqURL := fmt.Sprintf("%s/release-group/%s?%s", baseURL, url.PathEscape(mbid), params.Encode())

	var result releaseGroupResponse
	if err := c.getJSON(reqURL, &result); err != nil {
		return nil, err
	}

	var genres []string
	for _, t := range result.Tags {
		if t.Count >= minVotes && t.Name != "" {
			genres = append(genres, t.Name)
		}
	}
	return genres, nil
}

// getJSON performs a rate-limited GET and decodes the JSON body into out.
func (c *Client) getJSON(reqURL string, out any) error {
	c.waitForRateLimit()

	req, err := http.NewRequest(http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// waitForRateLimit ensures we don't exceed MusicBrainz rate limits.
func (c *Client) waitForRateLimit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.lastRequest)
	if elapsed < rateLimitDur {
		time.Sleep(rateLimitDur - elapsed)
	}
	c.lastRequest = time.Now()
}

// doRequestWithRetry executes an HTTP request with exponential backoff retry.
// Retries on 5xx errors and network errors.
func (c *Client) doRequestWithRetry(req *http.Request) (*http.Response, error) {
	var lastErr error
	delay := initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(delay)
			delay = min(delay*2, maxDelay)
			c.waitForRateLimit() // Re-apply rate limit after retry delay
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		// Success or client error (4xx) - don't retry
		if resp.StatusCode < 500 {
			return resp, nil
		}

		// Server error (5xx) - retry
		resp.Body.Close()
		lastErr = fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries+1, lastErr)
}
