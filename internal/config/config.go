// Package config loads tagtidy settings from TOML files.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	MusicFolder string `koanf:"music_folder"` // default library root for normalize
	ShowsFolder string `koanf:"shows_folder"` // default shows root for rename

	// MusicBrainz settings
	MusicBrainz MusicBrainzConfig `koanf:"musicbrainz"`

	// Last.fm genre fallback (used when MusicBrainz has no tags)
	Lastfm LastfmConfig `koanf:"lastfm"`

	// TMDB episode titles (enables TV show renaming when configured)
	TMDB TMDBConfig `koanf:"tmdb"`
}

// MusicBrainzConfig holds MusicBrainz-related configuration.
type MusicBrainzConfig struct {
	Contact string `koanf:"contact"` // contact string sent in the user agent
}

// LastfmConfig holds Last.fm API configuration.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
}

// TMDBConfig holds TMDB API configuration.
type TMDBConfig struct {
	APIKey string `koanf:"api_key"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.MusicFolder = expandPath(cfg.MusicFolder)
	cfg.ShowsFolder = expandPath(cfg.ShowsFolder)

	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. ~/.config/tagtidy/config.toml
		filepath.Join(xdg.ConfigHome, "tagtidy", "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasLastfmConfig returns true if the Last.fm fallback is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// HasTMDBConfig returns true if TMDB lookups are configured.
func (c *Config) HasTMDBConfig() bool {
	return c.TMDB.APIKey != ""
}
