package tags

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"

	"github.com/lverne/tagtidy/internal/engine"
)

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.mp3", FormatFrames},
		{"a.MP3", FormatFrames},
		{"a.aiff", FormatFrames},
		{"a.wav", FormatFrames},
		{"a.flac", FormatVorbis},
		{"a.ogg", FormatVorbis},
		{"a.opus", FormatVorbis},
		{"a.m4a", FormatAtoms},
		{"a.mp4", FormatAtoms},
		{"a.txt", FormatUnknown},
		{"a.nfo", FormatUnknown},
	}
	for _, tt := range tests {
		if got := FormatOf(tt.path); got != tt.want {
			t.Errorf("FormatOf(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestIsAudioFile(t *testing.T) {
	if !IsAudioFile("/music/track.flac") {
		t.Error("track.flac not recognized")
	}
	if IsAudioFile("/music/album.nfo") {
		t.Error("album.nfo wrongly recognized")
	}
}

func TestOpenUnsupported(t *testing.T) {
	if _, err := Open("notes.txt"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

// writeMP3 creates an MP3 file carrying only an ID3v2 tag. The engine
// never touches audio frames, so a tag-only file is enough.
func writeMP3(t *testing.T, artistValue, albumArtist string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "track.mp3")
	// A fake MPEG frame so the file isn't empty; the tag editor only
	// touches the ID3 block at the head.
	audio := []byte{0xFF, 0xFB, 0x90, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		t.Fatal(err)
	}

	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	id3tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	id3tag.SetArtist(artistValue)
	if albumArtist != "" {
		id3tag.AddTextFrame(id3tag.CommonID("Band/Orchestra/Accompaniment"), id3v2.EncodingUTF8, albumArtist)
	}
	if err := id3tag.Save(); err != nil {
		t.Fatal(err)
	}
	if err := id3tag.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func readMP3Artist(t *testing.T, path string) (artistValue, albumArtist string) {
	t.Helper()
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer id3tag.Close()
	return id3tag.Artist(), getTextFrame(id3tag, id3tag.CommonID("Band/Orchestra/Accompaniment"))
}

func TestMP3Normalize(t *testing.T) {
	path := writeMP3(t, "KOAN Sound feat. Asa", "KOAN Sound & Asa")

	target, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	res := engine.Process(target, engine.Options{})
	if res.Status != engine.StatusApplied {
		t.Fatalf("status = %v, want %v: %v", res.Status, engine.StatusApplied, res.Err)
	}
	if len(res.Changes) != 2 {
		t.Fatalf("changes = %+v, want 2", res.Changes)
	}

	artistValue, albumArtist := readMP3Artist(t, path)
	if artistValue != "KOAN Sound;Asa" {
		t.Errorf("artist = %q, want %q", artistValue, "KOAN Sound;Asa")
	}
	if albumArtist != "KOAN Sound;Asa" {
		t.Errorf("album artist = %q, want %q", albumArtist, "KOAN Sound;Asa")
	}

	// A second run sees normalized values.
	again, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if res := engine.Process(again, engine.Options{}); res.Status != engine.StatusUnchanged {
		t.Errorf("second run status = %v, want %v", res.Status, engine.StatusUnchanged)
	}
}

// writeMP3v22 builds an MP3 with a hand-assembled ID3v2.2 tag, a version
// bogem/id3v2 refuses to parse. Frame TP1 carries the artist.
func writeMP3v22(t *testing.T, artistValue string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "old.mp3")

	content := append([]byte{0}, artistValue...) // Latin-1 text frame
	frame := append([]byte("TP1"), 0, 0, byte(len(content)))
	frame = append(frame, content...)
	header := []byte{'I', 'D', '3', 2, 0, 0, 0, 0, 0, byte(len(frame))}

	data := append(header, frame...)
	data = append(data, 0xFF, 0xFB, 0x90, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMP3UnsupportedVersionNormalize(t *testing.T) {
	path := writeMP3v22(t, "KOAN Sound feat. Asa")

	target, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	res := engine.Process(target, engine.Options{})
	if res.Status != engine.StatusApplied {
		t.Fatalf("status = %v, want %v: %v", res.Status, engine.StatusApplied, res.Err)
	}

	// The old tag is gone and the artist lives in a tag version the
	// frame library can read back.
	artistValue, _ := readMP3Artist(t, path)
	if artistValue != "KOAN Sound;Asa" {
		t.Errorf("artist = %q, want %q", artistValue, "KOAN Sound;Asa")
	}

	again, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if res := engine.Process(again, engine.Options{}); res.Status != engine.StatusUnchanged {
		t.Errorf("second run status = %v, want %v", res.Status, engine.StatusUnchanged)
	}
}

func TestMP3AlreadyNormalized(t *testing.T) {
	path := writeMP3(t, "Band of Horses", "")

	target, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	res := engine.Process(target, engine.Options{})
	if res.Status != engine.StatusUnchanged {
		t.Errorf("status = %v, want %v", res.Status, engine.StatusUnchanged)
	}
}

func TestMP3Preview(t *testing.T) {
	path := writeMP3(t, "A ft. B", "")

	target, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	res := engine.Process(target, engine.Options{Preview: true})
	if res.Status != engine.StatusPreviewed {
		t.Fatalf("status = %v, want %v", res.Status, engine.StatusPreviewed)
	}

	artistValue, _ := readMP3Artist(t, path)
	if artistValue != "A ft. B" {
		t.Errorf("artist = %q, preview must not write", artistValue)
	}
}

// writeFLAC creates a FLAC file with a zeroed STREAMINFO, a Vorbis
// comment block carrying one ARTIST comment per value plus a TITLE, and
// a stub frame stream (just the sync code, which go-flac's parser
// requires). The engine never reads audio frames.
func writeFLAC(t *testing.T, artists []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "track.flac")

	cmts := flacvorbis.New()
	for _, a := range artists {
		if err := cmts.Add("ARTIST", a); err != nil {
			t.Fatal(err)
		}
	}
	if err := cmts.Add("TITLE", "Forgotten Myths"); err != nil {
		t.Fatal(err)
	}
	block := cmts.Marshal()

	f := &flac.File{
		Meta: []*flac.MetaDataBlock{
			{Type: flac.StreamInfo, Data: make([]byte, 34)},
			&block,
		},
		Frames: []byte{0xFF, 0xF8},
	}
	if err := f.Save(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFLACComments(t *testing.T, path string) *flacvorbis.MetaDataBlockVorbisComment {
	t.Helper()
	f, err := flac.ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	cmts := findVorbisComment(f)
	if cmts == nil {
		t.Fatal("no vorbis comment block")
	}
	return cmts
}

func TestFLACNormalize(t *testing.T) {
	path := writeFLAC(t, []string{"KOAN Sound & Asa", "Culprate"})

	target, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	res := engine.Process(target, engine.Options{})
	if res.Status != engine.StatusApplied {
		t.Fatalf("status = %v, want %v: %v", res.Status, engine.StatusApplied, res.Err)
	}
	if len(res.Changes) != 1 {
		t.Fatalf("changes = %+v, want 1", res.Changes)
	}

	cmts := readFLACComments(t, path)
	artists, err := cmts.Get("ARTIST")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"KOAN Sound", "Asa", "Culprate"}
	if len(artists) != len(want) {
		t.Fatalf("artists = %v, want %v", artists, want)
	}
	for i := range want {
		if artists[i] != want[i] {
			t.Errorf("artists[%d] = %q, want %q", i, artists[i], want[i])
		}
	}

	// The rebuild keeps unrelated comments.
	titles, err := cmts.Get("TITLE")
	if err != nil || len(titles) != 1 || titles[0] != "Forgotten Myths" {
		t.Errorf("title comment lost in rewrite: %v, %v", titles, err)
	}

	again, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if res := engine.Process(again, engine.Options{}); res.Status != engine.StatusUnchanged {
		t.Errorf("second run status = %v, want %v", res.Status, engine.StatusUnchanged)
	}
}

func TestFLACAlreadySplit(t *testing.T) {
	path := writeFLAC(t, []string{"KOAN Sound", "Asa"})

	target, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	res := engine.Process(target, engine.Options{})
	if res.Status != engine.StatusUnchanged {
		t.Errorf("status = %v, want %v", res.Status, engine.StatusUnchanged)
	}
}

func TestStripID3v2Tag(t *testing.T) {
	path := writeMP3(t, "Someone", "")

	if err := stripID3v2Tag(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// The fake MPEG frame from writeMP3 must survive, the tag must not.
	want := []byte{0xFF, 0xFB, 0x90, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if len(data) != len(want) {
		t.Fatalf("stripped file has %d bytes, want %d", len(data), len(want))
	}
	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("audio bytes changed at %d", i)
		}
	}
}
