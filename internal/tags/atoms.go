package tags

import (
	"fmt"
	"os"

	mp4tag "github.com/Sorrow446/go-mp4tag"
	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"

	"github.com/lverne/tagtidy/internal/engine"
)

// atomsTarget handles MP4 atom containers (M4A/MP4). Artists are stored
// as one delimited string in the ©ART and aART atoms. Reads go through
// dhowden/tag with a TagLib fallback for files it cannot parse (some
// ffmpeg-created M4A files); writes go through go-mp4tag, which rewrites
// only the atoms given to it.
type atomsTarget struct {
	path string
}

var _ engine.Target = (*atomsTarget)(nil)

func (t *atomsTarget) Path() string {
	return t.path
}

func (t *atomsTarget) Fields() ([]engine.Field, error) {
	artistValue, albumArtistValue, err := t.readCredits()
	if err != nil {
		return nil, err
	}

	var fields []engine.Field
	if f, ok := credit(FieldArtist, artistValue); ok {
		fields = append(fields, f)
	}
	if f, ok := credit(FieldAlbumArtist, albumArtistValue); ok {
		fields = append(fields, f)
	}
	return fields, nil
}

func (t *atomsTarget) readCredits() (artistValue, albumArtistValue string, err error) {
	f, err := os.Open(t.path)
	if err != nil {
		return "", "", fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	m, readErr := tag.ReadFrom(f)
	if readErr == nil {
		return m.Artist(), m.AlbumArtist(), nil
	}

	// dhowden/tag can't parse some M4A files; fall back to TagLib.
	raw, tlErr := taglib.ReadTags(t.path)
	if tlErr != nil {
		return "", "", fmt.Errorf("read atoms: %w", readErr)
	}
	return firstValue(raw[taglib.Artist]), firstValue(raw[taglib.AlbumArtist]), nil
}

func (t *atomsTarget) Apply(changes []engine.Change) error {
	mp4, err := mp4tag.Open(t.path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer mp4.Close()

	update := &mp4tag.MP4Tags{}
	for _, c := range changes {
		switch c.Field {
		case FieldArtist:
			update.Artist = c.Proposed
		case FieldAlbumArtist:
			update.AlbumArtist = c.Proposed
		}
	}

	if err := mp4.Write(update, nil); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
