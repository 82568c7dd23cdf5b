package shows

import (
	"fmt"

	"github.com/lverne/tagtidy/internal/anilist"
	"github.com/lverne/tagtidy/internal/tmdb"
)

// AniListSource resolves episode titles through AniList. AniList tracks
// each anime season as its own entry with absolute episode chaining, so
// the source converts season-local numbers using the show's on-disk
// episode counts unless the files already use absolute numbering.
type AniListSource struct {
	client   *anilist.Client
	animeID  int
	absolute bool
	counts   map[int]int
}

// NewAniListSource searches AniList for the show and inspects the show
// directory's numbering scheme.
func NewAniListSource(client *anilist.Client, showName, showPath string) (*AniListSource, error) {
	animeID, err := client.SearchAnime(showName)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", showName, err)
	}
	if animeID == 0 {
		return nil, fmt.Errorf("anime %q not found", showName)
	}

	absolute, counts, err := DetectNumbering(showPath)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", showPath, err)
	}

	return &AniListSource{
		client:   client,
		animeID:  animeID,
		absolute: absolute,
		counts:   counts,
	}, nil
}

// EpisodeTitle implements TitleSource.
func (s *AniListSource) EpisodeTitle(seasonNum, episode int) (string, error) {
	abs := episode
	if !s.absolute {
		abs = AbsoluteEpisode(seasonNum, episode, s.counts)
	}
	return s.client.EpisodeTitle(s.animeID, abs)
}

// TMDBSource resolves episode titles through TMDB.
type TMDBSource struct {
	client *tmdb.Client
	showID int
}

// NewTMDBSource searches TMDB for the show.
func NewTMDBSource(client *tmdb.Client, showName string) (*TMDBSource, error) {
	show, err := client.SearchShow(showName)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", showName, err)
	}
	if show == nil {
		return nil, fmt.Errorf("show %q not found", showName)
	}
	return &TMDBSource{client: client, showID: show.ID}, nil
}

// EpisodeTitle implements TitleSource.
func (s *TMDBSource) EpisodeTitle(seasonNum, episode int) (string, error) {
	return s.client.EpisodeName(s.showID, seasonNum, episode)
}
