// Package tags adapts embedded audio container tags to the normalization
// engine. It consolidates artist credit handling for ID3-frame containers
// (MP3, AIFF, WAV), Vorbis-comment containers (FLAC, Ogg, Opus) and MP4
// atom containers (M4A, MP4).
package tags

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lverne/tagtidy/internal/engine"
)

// File extensions supported by the tags package.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOPUS = ".opus"
	ExtOGG  = ".ogg"
	ExtM4A  = ".m4a"
	ExtMP4  = ".mp4"
	ExtAIFF = ".aiff"
	ExtAIF  = ".aif"
	ExtWAV  = ".wav"
)

// id3Magic is the magic bytes for ID3v2 header detection.
const id3Magic = "ID3"

// Field names shared by every adapter.
const (
	FieldArtist      = "artist"
	FieldAlbumArtist = "albumartist"
)

// Format identifies the tagging convention a container uses.
type Format int

const (
	FormatUnknown Format = iota
	// FormatFrames covers ID3v2 frame containers: MP3, AIFF, WAV.
	FormatFrames
	// FormatVorbis covers native multi-value Vorbis comments: FLAC, Ogg, Opus.
	FormatVorbis
	// FormatAtoms covers MP4 atom tags: M4A, MP4.
	FormatAtoms
)

// FormatOf detects the tagging convention from the file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtMP3, ExtAIFF, ExtAIF, ExtWAV:
		return FormatFrames
	case ExtFLAC, ExtOGG, ExtOPUS:
		return FormatVorbis
	case ExtM4A, ExtMP4:
		return FormatAtoms
	}
	return FormatUnknown
}

// IsAudioFile returns true if the path has a supported audio extension.
func IsAudioFile(path string) bool {
	return FormatOf(path) != FormatUnknown
}

// Open returns the engine target for the container at path. Format
// detection happens once here; adapters never re-inspect the kind.
func Open(path string) (engine.Target, error) {
	switch FormatOf(path) {
	case FormatFrames:
		return &framesTarget{path: path}, nil
	case FormatVorbis:
		return &vorbisTarget{path: path}, nil
	case FormatAtoms:
		return &atomsTarget{path: path}, nil
	}
	return nil, fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
}

// firstValue returns the first non-empty value of a multi-value tag map
// entry, or empty string.
func firstValue(values []string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// credit builds the engine field for one delimited-string credit value,
// or false when the field is absent.
func credit(name, value string) (engine.Field, bool) {
	if value == "" {
		return engine.Field{}, false
	}
	return engine.Field{Name: name, Values: []string{value}}, true
}
