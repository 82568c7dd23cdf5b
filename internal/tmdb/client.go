// Package tmdb provides the TMDB lookups used for episode renaming:
// TV show search and per-episode name retrieval.
package tmdb

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

const (
	baseURL      = "https://api.themoviedb.org/3"
	rateLimitDur = 250 * time.Millisecond
)

// Client provides access to the TMDB API. The rate limiter state lives on
// the client, one limiter per client instance.
type Client struct {
	apiKey      string
	httpClient  *http.Client
	lastRequest time.Time
	mu          sync.Mutex
}

// NewClient creates a new TMDB API client with the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Show is a search result: the TMDB show id plus its IMDB id when known.
type Show struct {
	ID     int
	IMDBID string
}

// SearchShow searches for a TV show by name and returns the best match,
// or nil when nothing matches.
func (c *Client) SearchShow(name string) (*Show, error) {
	params := url.Values{}
	params.Set("query", name)

	var result struct {
		Results []struct {
			ID int `json:"id"`
		} `json:"results"`
	}
	if err := c.getJSON("/search/tv", params, &result); err != nil {
		return nil, err
	}
	if len(result.Results) == 0 {
		return nil, nil
	}

	show := &Show{ID: result.Results[0].ID}

	// The IMDB id is informational; a failed lookup doesn't fail the search.
	var ext struct {
		IMDBID string `json:"imdb_id"`
	}
	if err := c.getJSON("/tv/"+strconv.Itoa(show.ID)+"/external_ids", nil, &ext); err == nil {
		show.IMDBID = ext.IMDBID
	}
	return show, nil
}

// EpisodeName fetches the official name of one episode, or empty when the
// episode is unknown.
func (c *Client) EpisodeName(showID, seasonNum, episode int) (string, error) {
	path := fmt.Sprintf("/tv/%d/season/%d/episode/%d", showID, seasonNum, episode)

	var result struct {
		Name string `json:"name"`
	}
	if err := c.getJSON(path, nil, &result); err != nil {
		return "", err
	}
	return result.Name, nil
}

// getJSON performs a rate-limited GET and decodes the JSON body into out.
// A 404 means the resource doesn't exist and decodes to the zero value.
func (c *Client) getJSON(path string, params url.Values, out any) error {
	c.waitForRateLimit()

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequest(http.MethodGet, baseURL+path+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API status %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// waitForRateLimit enforces the minimum delay between TMDB requests.
func (c *Client) waitForRateLimit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.lastRequest)
	if elapsed < rateLimitDur {
		time.Sleep(rateLimitDur - elapsed)
	}
	c.lastRequest = time.Now()
}
