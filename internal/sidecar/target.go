package sidecar

import (
	"fmt"
	"strings"

	"github.com/lverne/tagtidy/internal/engine"
)

// genericGenre is the placeholder genre that counts as missing.
const genericGenre = "music"

// GenreSource resolves genres for an album identity. An empty mbid means
// the source must search by album title and artist.
type GenreSource interface {
	AlbumGenres(mbid, artist, album string) ([]string, error)
}

// GenreOptions controls genre enrichment for a sidecar target.
type GenreOptions struct {
	Fetch  bool
	Force  bool
	Source GenreSource
}

// Target adapts a sidecar document to the engine. Each non-empty artist
// and albumartist element is exposed as its own field occurrence so
// album documents listing several artists keep one element per credit.
type Target struct {
	doc   *Document
	genre GenreOptions
}

var _ engine.Target = (*Target)(nil)

// NewTarget opens the sidecar document at path.
func NewTarget(path string, genre GenreOptions) (*Target, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Target{doc: doc, genre: genre}, nil
}

// Path implements engine.Target.
func (t *Target) Path() string {
	return t.doc.Path()
}

// Fields implements engine.Target.
func (t *Target) Fields() ([]engine.Field, error) {
	var fields []engine.Field
	for _, name := range []string{"artist", "albumartist"} {
		for i, value := range t.doc.FieldValues(name) {
			fields = append(fields, engine.Field{
				Name:   name,
				Values: []string{value},
				Index:  i,
			})
		}
	}
	return fields, nil
}

// Enrich implements engine.Enricher: it proposes a genre replacement when
// fetching is enabled and the document's genres are missing, empty, the
// generic placeholder, or forcibly refreshed.
func (t *Target) Enrich() ([]engine.Change, error) {
	if !t.genre.Fetch || t.genre.Source == nil {
		return nil, nil
	}

	existing := t.doc.Genres()
	if !t.genre.Force && !needsGenres(existing) {
		return nil, nil
	}

	mbid := t.doc.MusicBrainzID()
	album := t.doc.AlbumTitle()
	artistName := t.doc.PrimaryArtist()
	if mbid == "" && (album == "" || artistName == "") {
		return nil, nil
	}

	genres, err := t.genre.Source.AlbumGenres(mbid, artistName, album)
	if err != nil {
		return nil, fmt.Errorf("genre lookup: %w", err)
	}
	if len(genres) == 0 {
		return nil, nil
	}

	return []engine.Change{{
		Field:    "genre",
		Original: strings.Join(existing, ", "),
		Proposed: strings.Join(genres, ", "),
		Names:    genres,
	}}, nil
}

// needsGenres reports whether the existing genre set should be replaced:
// none present, all empty, or only the generic placeholder.
func needsGenres(existing []string) bool {
	if len(existing) == 0 {
		return true
	}
	if len(existing) == 1 && strings.ToLower(strings.TrimSpace(existing[0])) == genericGenre {
		return true
	}
	return false
}

// Apply implements engine.Target: it applies every change to the in-memory
// document and saves it once.
func (t *Target) Apply(changes []engine.Change) error {
	for _, c := range changes {
		if c.Field == "genre" {
			t.doc.ReplaceGenres(c.Names)
			continue
		}
		t.doc.SetField(c.Field, c.Index, c.Proposed)
	}
	return t.doc.Save()
}
