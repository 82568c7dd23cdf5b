// Package lastfm wraps the Last.fm API as a fallback genre source for
// albums MusicBrainz has no tags for.
package lastfm

import (
	"fmt"

	"github.com/shkh/lastfm-go/lastfm"
)

// Client wraps the Last.fm API for album tag lookups.
type Client struct {
	api *lastfm.Api
}

// New creates a new Last.fm client with the given API credentials.
// Album tag lookups only need the key; the secret may be empty.
func New(apiKey, apiSecret string) *Client {
	return &Client{api: lastfm.New(apiKey, apiSecret)}
}

// AlbumTopTags fetches the top community tags for an album, in ranking
// order. Tag names come back as the community typed them; the genre
// resolver normalizes capitalization.
func (c *Client) AlbumTopTags(artistName, album string) ([]string, error) {
	params := lastfm.P{
		"artist": artistName,
		"album":  album,
	}

	result, err := c.api.Album.GetTopTags(params)
	if err != nil {
		return nil, fmt.Errorf("album top tags: %w", err)
	}

	var tagNames []string
	for _, t := range result.Tags {
		if t.Name != "" {
			tagNames = append(tagNames, t.Name)
		}
	}
	return tagNames, nil
}
