//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/music",
			expected: filepath.Join(home, "music"),
		},
		{
			name:     "tilde with nested path",
			input:    "~/media/shows",
			expected: filepath.Join(home, "media", "shows"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/srv/media/music",
			expected: "/srv/media/music",
		},
		{
			name:     "relative path unchanged",
			input:    "music/albums",
			expected: "music/albums",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	if len(paths) != 2 {
		t.Fatalf("getConfigPaths() returned %d paths, want 2", len(paths))
	}

	// Last path wins and should be the local config.toml
	if paths[len(paths)-1] != "config.toml" {
		t.Errorf("last config path = %q, want %q", paths[len(paths)-1], "config.toml")
	}

	if filepath.Base(filepath.Dir(paths[0])) != "tagtidy" {
		t.Errorf("first config path = %q, want a tagtidy config dir", paths[0])
	}
}

func TestHasLastfmConfig(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected bool
	}{
		{
			name: "both APIKey and APISecret set",
			config: Config{
				Lastfm: LastfmConfig{
					APIKey:    "my-api-key",
					APISecret: "my-api-secret",
				},
			},
			expected: true,
		},
		{
			name: "only APIKey set",
			config: Config{
				Lastfm: LastfmConfig{
					APIKey: "my-api-key",
				},
			},
			expected: false,
		},
		{
			name:     "neither set",
			config:   Config{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.HasLastfmConfig()
			if result != tt.expected {
				t.Errorf("HasLastfmConfig() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestHasTMDBConfig(t *testing.T) {
	cfg := Config{}
	if cfg.HasTMDBConfig() {
		t.Error("HasTMDBConfig() = true for empty config")
	}
	cfg.TMDB.APIKey = "key"
	if !cfg.HasTMDBConfig() {
		t.Error("HasTMDBConfig() = false with key set")
	}
}

func TestLoad_BasicConfig(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get working directory: %v", err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("could not change to temp directory: %v", err)
	}
	defer func() {
		_ = os.Chdir(originalWd)
	}()

	configContent := `
music_folder = "~/music"
shows_folder = "/srv/media/shows"

[tmdb]
api_key = "tmdb-key"

[lastfm]
api_key = "lastfm-key"
api_secret = "lastfm-secret"

[musicbrainz]
contact = "someone@example.com"
`
	if err := os.WriteFile("config.toml", []byte(configContent), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	if expected := filepath.Join(home, "music"); cfg.MusicFolder != expected {
		t.Errorf("MusicFolder = %q, want %q", cfg.MusicFolder, expected)
	}
	if cfg.ShowsFolder != "/srv/media/shows" {
		t.Errorf("ShowsFolder = %q, want %q", cfg.ShowsFolder, "/srv/media/shows")
	}
	if cfg.TMDB.APIKey != "tmdb-key" {
		t.Errorf("TMDB.APIKey = %q, want %q", cfg.TMDB.APIKey, "tmdb-key")
	}
	if cfg.Lastfm.APIKey != "lastfm-key" {
		t.Errorf("Lastfm.APIKey = %q, want %q", cfg.Lastfm.APIKey, "lastfm-key")
	}
	if cfg.MusicBrainz.Contact != "someone@example.com" {
		t.Errorf("MusicBrainz.Contact = %q, want %q", cfg.MusicBrainz.Contact, "someone@example.com")
	}
}

func TestLoad_InvalidToml(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get working directory: %v", err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("could not change to temp directory: %v", err)
	}
	defer func() {
		_ = os.Chdir(originalWd)
	}()

	if err := os.WriteFile("config.toml", []byte("invalid = [[["), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	_, err = Load()
	if err == nil {
		t.Error("Load() expected error for invalid TOML, got nil")
	}
}
