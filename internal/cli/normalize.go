package cli

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lverne/tagtidy/internal/genre"
	"github.com/lverne/tagtidy/internal/lastfm"
	"github.com/lverne/tagtidy/internal/musicbrainz"
	"github.com/lverne/tagtidy/internal/runner"
	"github.com/lverne/tagtidy/internal/sidecar"
)

func newNormalizeCmd() *cobra.Command {
	var (
		dryRun      bool
		noBackup    bool
		fetchGenres bool
		force       bool
		extensions  []string
		skipNFO     bool
	)

	cmd := &cobra.Command{
		Use:   "normalize [dir]",
		Short: "Normalize artist credits in NFO documents and audio tags",
		Long: `Walks a library directory, splits joint artist credits (feat., &, and)
into individual names and writes them back to NFO documents and embedded
audio tags. Optionally fills in missing genres from MusicBrainz.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if force && !fetchGenres {
				return errors.New("--force requires --fetch-genres")
			}

			cfg := loadConfig()

			root := cfg.MusicFolder
			if len(args) > 0 {
				root = args[0]
			}
			if root == "" {
				return errors.New("no directory given and music_folder not configured")
			}

			var source sidecar.GenreSource
			if fetchGenres {
				mb := musicbrainz.NewClient(cfg.MusicBrainz.Contact)
				var fallback genre.FallbackClient
				if cfg.HasLastfmConfig() {
					fallback = lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
				}
				source = genre.NewResolver(mb, fallback)
			}

			_, err := runner.Run(runner.Options{
				Root:        root,
				Preview:     dryRun,
				Backup:      !noBackup,
				Extensions:  extensions,
				SkipSidecar: skipNFO,
				FetchGenres: fetchGenres,
				ForceGenres: force,
				GenreSource: source,
				Out:         cmd.OutOrStdout(),
				Log:         logrus.StandardLogger(),
			})
			if err != nil {
				return fmt.Errorf("normalize: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show changes without writing")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "skip backup copies before writing")
	cmd.Flags().BoolVar(&fetchGenres, "fetch-genres", false, "fill in missing genres from MusicBrainz")
	cmd.Flags().BoolVar(&force, "force", false, "refresh genres even when present (with --fetch-genres)")
	cmd.Flags().StringSliceVar(&extensions, "extensions", nil, "audio extensions to process (default: all supported)")
	cmd.Flags().BoolVar(&skipNFO, "skip-nfo", false, "skip NFO sidecar documents")
	return cmd
}
