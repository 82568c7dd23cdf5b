package runner

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/lverne/tagtidy/internal/engine"
	"github.com/lverne/tagtidy/internal/errmsg"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	changeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func printPlan(w io.Writer, opts Options, sidecars, audioFiles int) {
	mode := "apply"
	if opts.Preview {
		mode = "dry run"
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Scanning %s (%s)", opts.Root, mode)))
	fmt.Fprintf(w, "Found %d sidecar documents and %d audio files\n", sidecars, audioFiles)
}

func printSection(w io.Writer, name string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, sectionStyle.Render("Processing "+name))
}

// printResult reports one outcome. parseOp names the read step for the
// failure message; write and backup failures carry their own class.
func printResult(w io.Writer, res engine.Result, parseOp errmsg.Op) {
	switch res.Status {
	case engine.StatusUnchanged:
		return
	case engine.StatusFailed:
		op := parseOp
		switch {
		case errors.Is(res.Err, engine.ErrBackup):
			op = errmsg.OpBackupFile
		case errors.Is(res.Err, engine.ErrWrite):
			op = errmsg.OpWriteFile
		}
		fmt.Fprintf(w, "%s: %s\n", pathStyle.Render(res.Path), errorStyle.Render(errmsg.Format(op, res.Err)))
		return
	}

	fmt.Fprintln(w, pathStyle.Render(res.Path))
	for _, c := range res.Changes {
		line := fmt.Sprintf("  %s: %q → %q", c.Field, c.Original, c.Proposed)
		fmt.Fprintln(w, changeStyle.Render(line))
	}
	if res.Status == engine.StatusPreviewed {
		fmt.Fprintln(w, dimStyle.Render("  (not written)"))
	} else if res.BackupPath != "" {
		fmt.Fprintln(w, dimStyle.Render("  backup: "+res.BackupPath))
	}
}

func printSummary(w io.Writer, opts Options, stats Stats) {
	fmt.Fprintln(w)
	verb := "updated"
	if opts.Preview {
		verb = "would update"
	}
	line := fmt.Sprintf("%d processed, %d %s, %d unchanged, %d errors",
		stats.Processed, stats.Updated, verb, stats.Skipped, stats.Errors)
	style := headerStyle
	if stats.Errors > 0 {
		style = errorStyle
	}
	fmt.Fprintln(w, style.Render(line))
}
