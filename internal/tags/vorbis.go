package tags

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"go.senan.xyz/taglib"

	"github.com/lverne/tagtidy/internal/engine"
)

// vorbisTarget handles Vorbis comment containers, which store repeated
// values natively: one comment per artist, no string delimiting. FLAC is
// edited through go-flac so the comment block can be rebuilt in place;
// Ogg and Opus go through TagLib.
type vorbisTarget struct {
	path string
}

var _ engine.Target = (*vorbisTarget)(nil)

func (t *vorbisTarget) Path() string {
	return t.path
}

func (t *vorbisTarget) isFLAC() bool {
	return strings.ToLower(filepath.Ext(t.path)) == ExtFLAC
}

func (t *vorbisTarget) Fields() ([]engine.Field, error) {
	if t.isFLAC() {
		return t.flacFields()
	}
	return t.oggFields()
}

func (t *vorbisTarget) flacFields() ([]engine.Field, error) {
	f, err := flac.ParseFile(t.path)
	if err != nil {
		return nil, fmt.Errorf("parse file: %w", err)
	}

	cmts := findVorbisComment(f)
	if cmts == nil {
		return nil, nil
	}

	var fields []engine.Field
	for _, name := range []string{FieldArtist, FieldAlbumArtist} {
		values, err := cmts.Get(strings.ToUpper(name))
		if err != nil || len(values) == 0 {
			continue
		}
		fields = append(fields, engine.Field{Name: name, Values: values, Native: true})
	}
	return fields, nil
}

func (t *vorbisTarget) oggFields() ([]engine.Field, error) {
	raw, err := taglib.ReadTags(t.path)
	if err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}

	var fields []engine.Field
	if values := raw[taglib.Artist]; len(values) > 0 {
		fields = append(fields, engine.Field{Name: FieldArtist, Values: values, Native: true})
	}
	if values := raw[taglib.AlbumArtist]; len(values) > 0 {
		fields = append(fields, engine.Field{Name: FieldAlbumArtist, Values: values, Native: true})
	}
	return fields, nil
}

func (t *vorbisTarget) Apply(changes []engine.Change) error {
	if t.isFLAC() {
		return t.applyFLAC(changes)
	}
	return t.applyOgg(changes)
}

// applyFLAC rebuilds the Vorbis comment block: comments for changed fields
// are replaced with one comment per artist, everything else is kept.
func (t *vorbisTarget) applyFLAC(changes []engine.Change) error {
	f, err := flac.ParseFile(t.path)
	if err != nil {
		return fmt.Errorf("parse file: %w", err)
	}

	cmtIdx := -1
	for i, meta := range f.Meta {
		if meta.Type == flac.VorbisComment {
			cmtIdx = i
			break
		}
	}

	cmts := flacvorbis.New()
	if cmtIdx >= 0 {
		parsed, err := flacvorbis.ParseFromMetaDataBlock(*f.Meta[cmtIdx])
		if err != nil {
			return fmt.Errorf("parse vorbis comments: %w", err)
		}
		cmts = parsed
	}

	for _, c := range changes {
		key := strings.ToUpper(c.Field)
		cmts.Comments = removeComments(cmts.Comments, key)
		for _, name := range c.Names {
			if err := cmts.Add(key, name); err != nil {
				return fmt.Errorf("add %s: %w", key, err)
			}
		}
	}

	block := cmts.Marshal()
	if cmtIdx >= 0 {
		f.Meta[cmtIdx] = &block
	} else {
		f.Meta = append(f.Meta, &block)
	}

	if err := f.Save(t.path); err != nil {
		return fmt.Errorf("save file: %w", err)
	}
	return nil
}

func (t *vorbisTarget) applyOgg(changes []engine.Change) error {
	update := make(map[string][]string, len(changes))
	for _, c := range changes {
		switch c.Field {
		case FieldArtist:
			update[taglib.Artist] = c.Names
		case FieldAlbumArtist:
			update[taglib.AlbumArtist] = c.Names
		}
	}
	if err := taglib.WriteTags(t.path, update, 0); err != nil {
		return fmt.Errorf("write tags: %w", err)
	}
	return nil
}

// findVorbisComment returns the parsed comment block, or nil when the
// file has none.
func findVorbisComment(f *flac.File) *flacvorbis.MetaDataBlockVorbisComment {
	for _, meta := range f.Meta {
		if meta.Type == flac.VorbisComment {
			cmts, err := flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return nil
			}
			return cmts
		}
	}
	return nil
}

// removeComments drops every comment with the given upper-case key.
func removeComments(comments []string, key string) []string {
	kept := comments[:0]
	for _, c := range comments {
		idx := strings.Index(c, "=")
		if idx > 0 && strings.ToUpper(c[:idx]) == key {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}
