package tags

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"go.senan.xyz/taglib"

	"github.com/lverne/tagtidy/internal/engine"
)

// framesTarget handles ID3v2 frame containers. MP3 stores the tag at the
// file head, where bogem/id3v2 can edit it in place; AIFF and WAV embed
// the ID3 chunk inside the IFF/RIFF container, which goes through TagLib.
type framesTarget struct {
	path string
}

var _ engine.Target = (*framesTarget)(nil)

func (t *framesTarget) Path() string {
	return t.path
}

func (t *framesTarget) Fields() ([]engine.Field, error) {
	if t.isMP3() {
		return t.mp3Fields()
	}
	return t.chunkFields()
}

func (t *framesTarget) isMP3() bool {
	return strings.ToLower(filepath.Ext(t.path)) == ExtMP3
}

func (t *framesTarget) mp3Fields() ([]engine.Field, error) {
	id3tag, err := id3v2.Open(t.path, id3v2.Options{Parse: true})
	if errors.Is(err, id3v2.ErrUnsupportedVersion) {
		// ID3v2.2 or older tags - the frame library cannot parse them, so
		// the values are read through TagLib here. The old tag is stripped
		// on apply, after the backup.
		return t.chunkFields()
	}
	if err != nil {
		return nil, fmt.Errorf("open id3: %w", err)
	}
	defer id3tag.Close()

	var fields []engine.Field
	if f, ok := credit(FieldArtist, id3tag.Artist()); ok {
		fields = append(fields, f)
	}
	albumArtist := getTextFrame(id3tag, id3tag.CommonID("Band/Orchestra/Accompaniment"))
	if f, ok := credit(FieldAlbumArtist, albumArtist); ok {
		fields = append(fields, f)
	}
	return fields, nil
}

func (t *framesTarget) chunkFields() ([]engine.Field, error) {
	raw, err := taglib.ReadTags(t.path)
	if err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}

	var fields []engine.Field
	if f, ok := credit(FieldArtist, firstValue(raw[taglib.Artist])); ok {
		fields = append(fields, f)
	}
	if f, ok := credit(FieldAlbumArtist, firstValue(raw[taglib.AlbumArtist])); ok {
		fields = append(fields, f)
	}
	return fields, nil
}

func (t *framesTarget) Apply(changes []engine.Change) error {
	if t.isMP3() {
		return t.applyMP3(changes)
	}
	return t.applyChunk(changes)
}

// applyMP3 rewrites only the changed frames, preserving every other frame
// in the tag. Frames are created when absent.
func (t *framesTarget) applyMP3(changes []engine.Change) error {
	id3tag, err := id3v2.Open(t.path, id3v2.Options{Parse: true})
	if errors.Is(err, id3v2.ErrUnsupportedVersion) {
		// ID3v2.2 or older tags - strip them and retry
		if stripErr := stripID3v2Tag(t.path); stripErr != nil {
			return fmt.Errorf("strip unsupported ID3v2.2 tag: %w", stripErr)
		}
		id3tag, err = id3v2.Open(t.path, id3v2.Options{Parse: true})
	}
	if err != nil {
		return fmt.Errorf("open id3: %w", err)
	}
	defer id3tag.Close()

	id3tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	for _, c := range changes {
		switch c.Field {
		case FieldArtist:
			id3tag.SetArtist(c.Proposed)
		case FieldAlbumArtist:
			id3tag.AddTextFrame(id3tag.CommonID("Band/Orchestra/Accompaniment"), id3v2.EncodingUTF8, c.Proposed)
		}
	}

	if err := id3tag.Save(); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}
	return nil
}

func (t *framesTarget) applyChunk(changes []engine.Change) error {
	update := make(map[string][]string, len(changes))
	for _, c := range changes {
		switch c.Field {
		case FieldArtist:
			update[taglib.Artist] = []string{c.Proposed}
		case FieldAlbumArtist:
			update[taglib.AlbumArtist] = []string{c.Proposed}
		}
	}
	if err := taglib.WriteTags(t.path, update, 0); err != nil {
		return fmt.Errorf("write tags: %w", err)
	}
	return nil
}

// getTextFrame reads a text frame value from an ID3v2 tag.
func getTextFrame(id3tag *id3v2.Tag, frameID string) string {
	frames := id3tag.GetFrames(frameID)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return tf.Text
	}
	return ""
}

// stripID3v2Tag removes ID3v2 tags from an MP3 file.
// This is used to handle ID3v2.2 tags which the id3v2 library doesn't support.
func stripID3v2Tag(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	// Check for ID3v2 header (must have at least 10 bytes for header)
	if len(data) < 10 || string(data[:3]) != id3Magic {
		return nil // No ID3v2 tag to strip
	}

	// Parse tag size from bytes 6-9 (synchsafe integer: each byte uses only 7 bits)
	size := int(data[6])<<21 | int(data[7])<<14 | int(data[8])<<7 | int(data[9])
	tagSize := size + 10 // Add 10-byte header

	// Check for footer flag (bit 4 of flags byte) - ID3v2.4 only
	if data[5]&0x10 != 0 {
		tagSize += 10
	}

	if tagSize >= len(data) {
		return fmt.Errorf("ID3v2 tag size (%d) exceeds file size (%d)", tagSize, len(data))
	}

	// Preserve original file permissions
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	// Write audio data without the ID3v2 tag
	if err := os.WriteFile(path, data[tagSize:], info.Mode()); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}
