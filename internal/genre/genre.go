// Package genre resolves genres for an album identity, preferring
// MusicBrainz release-group tags and falling back to Last.fm top tags
// when configured.
package genre

import (
	"fmt"
	"strings"
	"unicode"
)

// CatalogClient is the MusicBrainz surface the resolver needs.
type CatalogClient interface {
	SearchReleaseGroup(album, artistName string) (string, error)
	ReleaseGroupGenres(mbid string) ([]string, error)
}

// FallbackClient is an optional secondary tag source (Last.fm).
type FallbackClient interface {
	AlbumTopTags(artistName, album string) ([]string, error)
}

// Resolver looks up genres for albums. It implements the sidecar
// package's GenreSource.
type Resolver struct {
	catalog  CatalogClient
	fallback FallbackClient
}

// NewResolver builds a resolver. fallback may be nil.
func NewResolver(catalog CatalogClient, fallback FallbackClient) *Resolver {
	return &Resolver{catalog: catalog, fallback: fallback}
}

// AlbumGenres resolves genres for the album. When mbid is empty the
// catalog is searched by album title and artist first. Returns an empty
// list when no source knows the album.
func (r *Resolver) AlbumGenres(mbid, artistName, album string) ([]string, error) {
	if mbid == "" {
		found, err := r.catalog.SearchReleaseGroup(album, artistName)
		if err != nil {
			return nil, fmt.Errorf("search release group: %w", err)
		}
		mbid = found
	}

	if mbid != "" {
		genres, err := r.catalog.ReleaseGroupGenres(mbid)
		if err != nil {
			return nil, fmt.Errorf("release group genres: %w", err)
		}
		if len(genres) > 0 {
			return capitalizeAll(genres), nil
		}
	}

	if r.fallback == nil {
		return nil, nil
	}
	tagNames, err := r.fallback.AlbumTopTags(artistName, album)
	if err != nil {
		return nil, fmt.Errorf("fallback tags: %w", err)
	}
	return capitalizeAll(tagNames), nil
}

func capitalizeAll(genres []string) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		out = append(out, capitalizeWords(g))
	}
	return out
}

// capitalizeWords upper-cases the first letter of every space-separated
// word and lower-cases the rest, so "hip hop" becomes "Hip Hop".
func capitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
