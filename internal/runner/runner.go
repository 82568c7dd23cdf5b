// Package runner walks a library directory and drives the normalization
// engine over every sidecar document and audio file it finds. Files are
// processed strictly sequentially; failures are counted, never fatal.
package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lverne/tagtidy/internal/engine"
	"github.com/lverne/tagtidy/internal/errmsg"
	"github.com/lverne/tagtidy/internal/sidecar"
	"github.com/lverne/tagtidy/internal/tags"
)

// DefaultExtensions lists the audio extensions processed when no filter
// is given.
var DefaultExtensions = []string{
	tags.ExtM4A, tags.ExtMP4, tags.ExtAIFF, tags.ExtAIF,
	tags.ExtFLAC, tags.ExtMP3, tags.ExtOGG, tags.ExtOPUS, tags.ExtWAV,
}

// Options configures a batch run.
type Options struct {
	Root        string
	Preview     bool
	Backup      bool
	Extensions  []string // audio extensions to process; nil means DefaultExtensions
	SkipSidecar bool

	// Genre enrichment for sidecar documents.
	FetchGenres bool
	ForceGenres bool
	GenreSource sidecar.GenreSource

	// Out receives progress and summary lines. Nil means os.Stdout.
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

// Stats aggregates per-file outcomes for the final summary.
type Stats struct {
	Processed int
	Updated   int
	Skipped   int
	Errors    int
}

func (s *Stats) record(res engine.Result) {
	s.Processed++
	switch res.Status {
	case engine.StatusApplied, engine.StatusPreviewed:
		s.Updated++
	case engine.StatusUnchanged:
		s.Skipped++
	case engine.StatusFailed:
		s.Errors++
	}
}

// Run processes every matching file under opts.Root and returns the
// aggregated stats. The only error returned is a missing or unreadable
// root; everything below that is absorbed into the counts.
func Run(opts Options) (Stats, error) {
	var stats Stats

	if _, err := os.Stat(opts.Root); err != nil {
		return stats, fmt.Errorf("library directory: %w", err)
	}

	sidecars, audioFiles, err := discover(opts.Root, opts.extensions(), opts.SkipSidecar)
	if err != nil {
		return stats, err
	}

	w := opts.out()
	printPlan(w, opts, len(sidecars), len(audioFiles))
	if len(sidecars) == 0 && len(audioFiles) == 0 {
		return stats, nil
	}

	engineOpts := engine.Options{
		Preview: opts.Preview,
		Backup:  opts.Backup,
		Warn: func(format string, args ...any) {
			opts.log().Warn(errmsg.Format(errmsg.OpGenreLookup, fmt.Errorf(format, args...)))
		},
	}

	if len(sidecars) > 0 {
		printSection(w, "sidecar documents")
		for _, path := range sidecars {
			stats.record(processSidecar(path, opts, engineOpts))
		}
	}

	if len(audioFiles) > 0 {
		printSection(w, "audio files")
		for _, path := range audioFiles {
			stats.record(processAudio(path, opts, engineOpts))
		}
	}

	printSummary(w, opts, stats)
	return stats, nil
}

func (o Options) extensions() map[string]bool {
	exts := o.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = true
	}
	return set
}

// discover walks the root collecting sidecar and audio files. Walk errors
// on individual entries are skipped so one unreadable directory doesn't
// stop the scan.
func discover(root string, exts map[string]bool, skipSidecar bool) (sidecars, audioFiles []string, err error) {
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // intentionally skipping errors
		}
		if d.IsDir() {
			return nil
		}
		switch {
		case sidecar.IsSidecarFile(path):
			if !skipSidecar {
				sidecars = append(sidecars, path)
			}
		case tags.IsAudioFile(path) && exts[strings.ToLower(filepath.Ext(path))]:
			audioFiles = append(audioFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return sidecars, audioFiles, nil
}

func processSidecar(path string, opts Options, engineOpts engine.Options) engine.Result {
	target, err := sidecar.NewTarget(path, sidecar.GenreOptions{
		Fetch:  opts.FetchGenres,
		Force:  opts.ForceGenres,
		Source: opts.GenreSource,
	})
	if err != nil {
		res := engine.Result{
			Path:   path,
			Status: engine.StatusFailed,
			Err:    engine.Classify(engine.ErrParse, err),
		}
		printResult(opts.out(), res, errmsg.OpLoadSidecar)
		return res
	}

	res := engine.Process(target, engineOpts)
	printResult(opts.out(), res, errmsg.OpLoadSidecar)
	return res
}

func processAudio(path string, opts Options, engineOpts engine.Options) engine.Result {
	target, err := tags.Open(path)
	if err != nil {
		res := engine.Result{
			Path:   path,
			Status: engine.StatusFailed,
			Err:    engine.Classify(engine.ErrParse, err),
		}
		printResult(opts.out(), res, errmsg.OpParseFile)
		return res
	}

	res := engine.Process(target, engineOpts)
	printResult(opts.out(), res, errmsg.OpParseFile)
	return res
}
