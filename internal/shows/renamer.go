package shows

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/lverne/tagtidy/internal/errmsg"
)

// TitleSource resolves official episode titles for one show. An empty
// title with a nil error means the catalog doesn't know the episode.
type TitleSource interface {
	EpisodeTitle(seasonNum, episode int) (string, error)
}

// Options configures a rename run.
type Options struct {
	// Execute performs the renames; the default is a dry run that only
	// prints what would happen.
	Execute bool
	// Out receives progress lines. Nil means os.Stdout.
	Out io.Writer
	// Log receives warnings. Nil means the standard logger.
	Log *logrus.Logger
}

func (o Options) out() io.Writer {
	if o.Out != nil {
		return o.Out
	}
	return os.Stdout
}

func (o Options) log() *logrus.Logger {
	if o.Log != nil {
		return o.Log
	}
	return logrus.StandardLogger()
}

// Stats aggregates per-episode outcomes.
type Stats struct {
	Renamed    int
	Unchanged  int
	Unresolved int
	Errors     int
}

// Run renames every episode file under showPath to
// "<show> - SnnEnn - <title>.mkv", carrying associated sidecar files
// along. Files whose episode number or title cannot be resolved are
// skipped with a warning; per-file rename errors are counted, never
// fatal. The only returned error is an unreadable show directory.
func Run(showPath, showName string, source TitleSource, opts Options) (Stats, error) {
	var stats Stats

	entries, err := os.ReadDir(showPath)
	if err != nil {
		return stats, fmt.Errorf("show directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	w := opts.out()
	log := opts.log()

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		seasonNum := SeasonNumber(entry.Name())
		if seasonNum == 0 {
			continue
		}
		seasonDir := filepath.Join(showPath, entry.Name())

		videos, err := filepath.Glob(filepath.Join(seasonDir, "*"+VideoExt))
		if err != nil || len(videos) == 0 {
			continue
		}
		sort.Strings(videos)

		fmt.Fprintf(w, "Season %d\n", seasonNum)

		for _, video := range videos {
			name := filepath.Base(video)

			episodeNum := ExtractEpisodeNumber(name)
			if episodeNum == 0 {
				log.Warnf("%s: no episode number found", name)
				stats.Unresolved++
				continue
			}

			title, err := source.EpisodeTitle(seasonNum, episodeNum)
			if err != nil {
				label := fmt.Sprintf("S%02dE%02d", seasonNum, episodeNum)
				log.Warn(errmsg.FormatWith(errmsg.OpEpisodeLookup, label, err))
				stats.Unresolved++
				continue
			}
			if title == "" {
				log.Warnf("S%02dE%02d: no title in catalog", seasonNum, episodeNum)
				stats.Unresolved++
				continue
			}

			newBase := fmt.Sprintf("%s - S%02dE%02d - %s",
				showName, seasonNum, episodeNum, SanitizeFilename(title))
			newName := newBase + VideoExt
			if name == newName {
				stats.Unchanged++
				continue
			}

			associated := AssociatedFiles(video)

			if !opts.Execute {
				fmt.Fprintf(w, "  %s\n  → %s\n", name, newName)
				for _, assoc := range associated {
					suffix := assoc[len(video)-len(VideoExt):]
					fmt.Fprintf(w, "  %s → %s\n", filepath.Base(assoc), newBase+suffix)
				}
				stats.Renamed++
				continue
			}

			if err := os.Rename(video, filepath.Join(seasonDir, newName)); err != nil {
				log.Warn(errmsg.FormatWith(errmsg.OpRenameFile, name, err))
				stats.Errors++
				continue
			}
			fmt.Fprintf(w, "  renamed %s\n", newName)
			stats.Renamed++

			for _, assoc := range associated {
				suffix := assoc[len(video)-len(VideoExt):]
				if err := os.Rename(assoc, filepath.Join(seasonDir, newBase+suffix)); err != nil {
					log.Warn(errmsg.FormatWith(errmsg.OpRenameFile, filepath.Base(assoc), err))
					stats.Errors++
				}
			}
		}
	}
	return stats, nil
}
