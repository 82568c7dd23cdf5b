// Package anilist provides the AniList GraphQL lookups used for episode
// renaming: anime search and episode title resolution across sequel
// seasons by absolute episode number.
package anilist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	apiURL       = "https://graphql.anilist.co"
	rateLimitDur = 700 * time.Millisecond
)

// Client provides access to the AniList GraphQL API. The rate limiter
// state lives on the client, one limiter per client instance.
type Client struct {
	httpClient  *http.Client
	lastRequest time.Time
	mu          sync.Mutex
}

// NewClient creates a new AniList API client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

const searchQuery = `
query ($search: String) {
  Media(search: $search, type: ANIME) {
    id
  }
}`

// SearchAnime searches for an anime by name and returns its AniList id,
// or 0 when nothing matches.
func (c *Client) SearchAnime(name string) (int, error) {
	var result struct {
		Data struct {
			Media *struct {
				ID int `json:"id"`
			} `json:"Media"`
		} `json:"data"`
	}
	if err := c.query(searchQuery, map[string]any{"search": name}, &result); err != nil {
		return 0, err
	}
	if result.Data.Media == nil {
		return 0, nil
	}
	return result.Data.Media.ID, nil
}

const episodesQuery = `
query ($id: Int) {
  Media(id: $id, type: ANIME) {
    episodes
    streamingEpisodes {
      title
    }
    relations {
      edges {
        relationType
        node {
          id
          type
          format
          episodes
          startDate { year }
          streamingEpisodes {
            title
          }
        }
      }
    }
  }
}`

type streamingEpisode struct {
	Title string `json:"title"`
}

type mediaNode struct {
	ID                int                `json:"id"`
	Type              string             `json:"type"`
	Format            string             `json:"format"`
	Episodes          int                `json:"episodes"`
	StartDate         struct{ Year int } `json:"startDate"`
	StreamingEpisodes []streamingEpisode `json:"streamingEpisodes"`
}

type relationEdge struct {
	RelationType string    `json:"relationType"`
	Node         mediaNode `json:"node"`
}

// season is one entry in the flattened season chain: the episodes of one
// AniList media entry plus the absolute number of its first episode.
type season struct {
	episodes []streamingEpisode
	startEp  int
}

// Title-prefix noise stripped from streaming episode titles.
var (
	numberPrefix  = regexp.MustCompile(`^\d+\.\s*`)
	episodePrefix = regexp.MustCompile(`^Episode\s+\d+\s*-\s*`)
)

// EpisodeTitle resolves the title of an absolute episode number. Sequel
// seasons (relation SEQUEL, anime in TV or ONA format) are chained after
// the main entry in airing-year order, so episode 30 of a 25-episode
// first season resolves to episode 5 of its sequel. Returns empty when
// the episode has no known title.
func (c *Client) EpisodeTitle(animeID, episode int) (string, error) {
	var result struct {
		Data struct {
			Media *struct {
				StreamingEpisodes []streamingEpisode `json:"streamingEpisodes"`
				Relations         struct {
					Edges []relationEdge `json:"edges"`
				} `json:"relations"`
			} `json:"Media"`
		} `json:"data"`
	}
	if err := c.query(episodesQuery, map[string]any{"id": animeID}, &result); err != nil {
		return "", err
	}
	media := result.Data.Media
	if media == nil {
		return "", nil
	}

	var sequels []mediaNode
	for _, edge := range media.Relations.Edges {
		node := edge.Node
		if edge.RelationType != "SEQUEL" || node.Type != "ANIME" {
			continue
		}
		if node.Format != "TV" && node.Format != "ONA" {
			continue
		}
		sequels = append(sequels, node)
	}
	sort.SliceStable(sequels, func(i, j int) bool {
		return sequels[i].StartDate.Year < sequels[j].StartDate.Year
	})

	var seasons []season
	next := 1
	if len(media.StreamingEpisodes) > 0 {
		seasons = append(seasons, season{episodes: media.StreamingEpisodes, startEp: 1})
		next += len(media.StreamingEpisodes)
	}
	for _, s := range sequels {
		seasons = append(seasons, season{episodes: s.StreamingEpisodes, startEp: next})
		next += len(s.StreamingEpisodes)
	}

	for _, s := range seasons {
		local := episode - s.startEp
		if local < 0 || local >= len(s.episodes) {
			continue
		}
		title := s.episodes[local].Title
		title = numberPrefix.ReplaceAllString(title, "")
		title = episodePrefix.ReplaceAllString(title, "")
		return strings.TrimSpace(title), nil
	}
	return "", nil
}

// query performs a rate-limited GraphQL POST and decodes the response
// into out. A 429 answer is retried once after the server's Retry-After
// delay.
func (c *Client) query(query string, variables map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	resp, err := c.post(body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 60
		if v, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && v > 0 {
			retryAfter = v
		}
		resp.Body.Close()
		time.Sleep(time.Duration(retryAfter+1) * time.Second)

		if resp, err = c.post(body); err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API status %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) post(body []byte) (*http.Response, error) {
	c.waitForRateLimit()

	req, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

// waitForRateLimit enforces the minimum delay between AniList requests.
func (c *Client) waitForRateLimit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.lastRequest)
	if elapsed < rateLimitDur {
		time.Sleep(rateLimitDur - elapsed)
	}
	c.lastRequest = time.Now()
}
