package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lverne/tagtidy/internal/anilist"
	"github.com/lverne/tagtidy/internal/errmsg"
	"github.com/lverne/tagtidy/internal/prompt"
	"github.com/lverne/tagtidy/internal/shows"
	"github.com/lverne/tagtidy/internal/tmdb"
)

func newRenameCmd() *cobra.Command {
	var (
		showsDir   string
		execute    bool
		forceAnime bool
		forceTV    bool
	)

	cmd := &cobra.Command{
		Use:   "rename <show>",
		Short: "Rename episode files with official titles from AniList or TMDB",
		Long: `Renames the episode files of one show to
"<show> - SnnEnn - <title>.mkv" using official episode titles, carrying
.nfo and thumbnail sidecars along. Dry run unless --execute is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if forceAnime && forceTV {
				return errors.New("--anime and --tv are mutually exclusive")
			}

			cfg := loadConfig()
			showName := args[0]

			dir := showsDir
			if dir == "" {
				dir = cfg.ShowsFolder
			}
			if dir == "" {
				dir = "."
			}
			showPath := filepath.Join(dir, showName)

			anime := forceAnime
			if !forceAnime && !forceTV {
				anime = shows.IsLikelyAnime(showName)
				if !anime {
					confirmed, err := prompt.Confirm(fmt.Sprintf("Is %q an anime?", showName))
					if err != nil {
						return fmt.Errorf("prompt: %w", err)
					}
					anime = confirmed
				}
			}

			var (
				source shows.TitleSource
				err    error
			)
			if anime {
				source, err = shows.NewAniListSource(anilist.NewClient(), showName, showPath)
			} else {
				if !cfg.HasTMDBConfig() {
					return errors.New("TMDB API key not configured; set tmdb.api_key or use --anime")
				}
				source, err = shows.NewTMDBSource(tmdb.NewClient(cfg.TMDB.APIKey), showName)
			}
			if err != nil {
				return errors.New(errmsg.FormatWith(errmsg.OpShowLookup, showName, err))
			}

			if !execute {
				fmt.Fprintln(cmd.OutOrStdout(), "Dry run, no files will be renamed. Use --execute to apply.")
			}

			stats, err := shows.Run(showPath, showName, source, shows.Options{
				Execute: execute,
				Out:     cmd.OutOrStdout(),
				Log:     logrus.StandardLogger(),
			})
			if err != nil {
				return fmt.Errorf("rename: %w", err)
			}

			verb := "renamed"
			if !execute {
				verb = "would rename"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d %s, %d already named, %d unresolved, %d errors\n",
				stats.Renamed, verb, stats.Unchanged, stats.Unresolved, stats.Errors)
			return nil
		},
	}

	cmd.Flags().StringVar(&showsDir, "shows-dir", "", "shows directory (default: shows_folder from config, else cwd)")
	cmd.Flags().BoolVar(&execute, "execute", false, "actually rename files (default is dry run)")
	cmd.Flags().BoolVar(&forceAnime, "anime", false, "force AniList lookups")
	cmd.Flags().BoolVar(&forceTV, "tv", false, "force TMDB lookups")
	return cmd
}
