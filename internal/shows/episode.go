// Package shows renames TV and anime episode files to carry their
// official episode titles, looked up from an external catalog. Layout is
// Jellyfin-style: <showsDir>/<show>/Season NN/<episode>.mkv with optional
// sidecar files next to each episode.
package shows

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// VideoExt is the episode container extension the renamer operates on.
const VideoExt = ".mkv"

// episodePatterns is the ordered list of episode-number patterns tried
// against a filename. First match wins, so the space-bounded form beats
// the looser SxxEnn form on names carrying both.
var episodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\s+(\d{2})\s+`),      // "Kyojin 01 (1080p"
	regexp.MustCompile(`[Ee](\d{2})`),        // E01, e01
	regexp.MustCompile(`Episode\s*(\d{2})`),  // Episode 01
	regexp.MustCompile(`-\s*(\d{2})\s*-`),    // - 01 -
}

// ExtractEpisodeNumber pulls the episode number out of a filename, or 0
// when no pattern matches.
func ExtractEpisodeNumber(filename string) int {
	for _, pattern := range episodePatterns {
		if m := pattern.FindStringSubmatch(filename); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

var (
	seasonDirPattern = regexp.MustCompile(`(?i)Season\s*(\d+)`)
	invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)
)

// SeasonNumber extracts the season number from a directory name like
// "Season 02", or 0 when the name doesn't match.
func SeasonNumber(dirName string) int {
	m := seasonDirPattern.FindStringSubmatch(dirName)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// SanitizeFilename replaces characters invalid in filenames with an
// underscore and trims trailing dots and spaces.
func SanitizeFilename(name string) string {
	name = invalidFileChars.ReplaceAllString(name, "_")
	return strings.TrimRight(name, ". ")
}

// associatedSuffixes are the sidecar suffixes renamed along with an
// episode file, appended to the episode's base name.
var associatedSuffixes = []string{".nfo", "-thumb.jpg", ".jpg"}

// AssociatedFiles returns the existing sidecar files sharing the episode
// file's base name.
func AssociatedFiles(videoPath string) []string {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	var found []string
	for _, suffix := range associatedSuffixes {
		path := base + suffix
		if _, err := os.Stat(path); err == nil {
			found = append(found, path)
		}
	}
	return found
}

// AbsoluteEpisode converts a season-local episode number to an absolute
// one by adding the episode counts of all earlier seasons.
func AbsoluteEpisode(seasonNum, episode int, counts map[int]int) int {
	absolute := episode
	for s := 1; s < seasonNum; s++ {
		absolute += counts[s]
	}
	return absolute
}

// DetectNumbering inspects a show directory and reports whether its
// episode files already use absolute numbering across seasons, along with
// the per-season episode counts. A later season whose lowest episode
// number is above 1 signals absolute numbering.
func DetectNumbering(showPath string) (absolute bool, counts map[int]int, err error) {
	counts = make(map[int]int)

	entries, err := os.ReadDir(showPath)
	if err != nil {
		return false, nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		seasonNum := SeasonNumber(entry.Name())
		if seasonNum == 0 {
			continue
		}

		videos, err := filepath.Glob(filepath.Join(showPath, entry.Name(), "*"+VideoExt))
		if err != nil || len(videos) == 0 {
			continue
		}

		minEp := 0
		n := 0
		for _, v := range videos {
			ep := ExtractEpisodeNumber(filepath.Base(v))
			if ep == 0 {
				continue
			}
			n++
			if minEp == 0 || ep < minEp {
				minEp = ep
			}
		}
		if n == 0 {
			continue
		}
		counts[seasonNum] = n

		if seasonNum > 1 && minEp > 1 {
			return true, counts, nil
		}
	}
	return false, counts, nil
}

// animeIndicators are name fragments that mark a show as anime without
// asking. Lowercase substring match.
var animeIndicators = []string{
	"shingeki", "kyojin", "naruto", "one piece", "dragon ball",
	"attack on titan", "demon slayer", "kimetsu", "jujutsu", "bleach",
}

// IsLikelyAnime reports whether the show name matches a known anime
// fragment. A false result means the caller should ask.
func IsLikelyAnime(showName string) bool {
	lower := strings.ToLower(showName)
	for _, indicator := range animeIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
