package runner

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

const testNFO = `<?xml version="1.0" encoding="UTF-8"?>
<album>
  <title>Some Album</title>
  <artist>Artist A feat. Artist B</artist>
</album>
`

const cleanNFO = `<?xml version="1.0" encoding="UTF-8"?>
<album>
  <title>Tidy Album</title>
  <artist>Artist A</artist>
</album>
`

func writeLibrary(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestRunMissingRoot(t *testing.T) {
	_, err := Run(Options{Root: filepath.Join(t.TempDir(), "nope")})
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestRunNormalizesSidecars(t *testing.T) {
	root := writeLibrary(t, map[string]string{
		"Artist A/Some Album/album.nfo": testNFO,
		"Artist A/Tidy Album/album.nfo": cleanNFO,
		"Artist A/Some Album/cover.jpg": "not audio",
		"Artist A/Some Album/notes.txt": "ignored",
	})

	var out bytes.Buffer
	stats, err := Run(Options{
		Root:   root,
		Backup: true,
		Out:    &out,
		Log:    quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if stats.Processed != 2 {
		t.Errorf("Processed = %d, want 2", stats.Processed)
	}
	if stats.Updated != 1 {
		t.Errorf("Updated = %d, want 1", stats.Updated)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", stats.Skipped)
	}
	if stats.Errors != 0 {
		t.Errorf("Errors = %d, want 0", stats.Errors)
	}

	// Normalized document written back.
	raw, err := os.ReadFile(filepath.Join(root, "Artist A/Some Album/album.nfo"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "Artist A;Artist B") {
		t.Errorf("document not normalized:\n%s", raw)
	}

	// One backup next to the mutated file.
	matches, err := filepath.Glob(filepath.Join(root, "Artist A/Some Album/album.nfo.backup_*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Errorf("backups = %v, want exactly one", matches)
	}

	if !strings.Contains(out.String(), "→") {
		t.Errorf("output missing change line:\n%s", out.String())
	}
}

func TestRunPreviewWritesNothing(t *testing.T) {
	root := writeLibrary(t, map[string]string{"album.nfo": testNFO})

	var out bytes.Buffer
	stats, err := Run(Options{
		Root:    root,
		Preview: true,
		Backup:  true,
		Out:     &out,
		Log:     quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if stats.Updated != 1 {
		t.Errorf("Updated = %d, want 1", stats.Updated)
	}

	raw, err := os.ReadFile(filepath.Join(root, "album.nfo"))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != testNFO {
		t.Error("preview mode modified the document")
	}

	matches, _ := filepath.Glob(filepath.Join(root, "album.nfo.backup_*"))
	if len(matches) != 0 {
		t.Errorf("preview mode created backups: %v", matches)
	}
}

func TestRunSkipSidecar(t *testing.T) {
	root := writeLibrary(t, map[string]string{"album.nfo": testNFO})

	stats, err := Run(Options{
		Root:        root,
		SkipSidecar: true,
		Out:         &bytes.Buffer{},
		Log:         quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Processed != 0 {
		t.Errorf("Processed = %d, want 0", stats.Processed)
	}
}

func TestRunCountsParseFailures(t *testing.T) {
	root := writeLibrary(t, map[string]string{
		"broken.nfo": "<album><artist>unterminated",
		"good.nfo":   testNFO,
	})

	var out bytes.Buffer
	stats, err := Run(Options{
		Root:   root,
		Backup: false,
		Out:    &out,
		Log:    quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}
	if stats.Updated != 1 {
		t.Errorf("Updated = %d, want 1 (batch must continue past failures)", stats.Updated)
	}
	if !strings.Contains(out.String(), "Failed to load sidecar document") {
		t.Errorf("output missing load failure message:\n%s", out.String())
	}
}

func TestExtensionFilter(t *testing.T) {
	opts := Options{Extensions: []string{"mp3", ".FLAC", " "}}
	set := opts.extensions()

	if !set[".mp3"] || !set[".flac"] {
		t.Errorf("extension set = %v, want .mp3 and .flac", set)
	}
	if set[".ogg"] {
		t.Error(".ogg should not be in a filtered set")
	}
}
