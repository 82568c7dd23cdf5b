// Package engine drives artist-name normalization for a single file: it
// inspects the current field values through a format target, decides
// whether a write is needed, takes a backup and applies the change.
package engine

import (
	"errors"
	"strings"
	"time"

	"github.com/lverne/tagtidy/internal/artist"
)

// Failure classification. Wrapped into the Result error so callers can
// count and report without aborting a batch.
var (
	// ErrParse marks a file whose container or document could not be read.
	ErrParse = errors.New("parse failure")
	// ErrWrite marks a failed backup or save step.
	ErrWrite = errors.New("write failure")
	// ErrBackup refines ErrWrite: the backup copy failed, the file itself
	// was never touched. Every ErrBackup error also matches ErrWrite.
	ErrBackup = errors.New("backup failure")
)

// classified attaches a failure class to a cause without leaking the
// class text into the message. errors.Is matches the class and anything
// in the cause chain.
type classified struct {
	class error
	cause error
}

func (e *classified) Error() string { return e.cause.Error() }

func (e *classified) Unwrap() error { return e.cause }

func (e *classified) Is(target error) bool { return target == e.class }

// Classify wraps cause so errors.Is reports the given failure class.
func Classify(class, cause error) error {
	return &classified{class: class, cause: cause}
}

// Status is the terminal outcome of processing one file.
type Status int

const (
	// StatusUnchanged means every field was already normalized.
	StatusUnchanged Status = iota
	// StatusApplied means changes were written to the file.
	StatusApplied
	// StatusPreviewed means changes were found but preview mode kept the
	// file untouched.
	StatusPreviewed
	// StatusFailed means the file could not be read or written.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusApplied:
		return "applied"
	case StatusPreviewed:
		return "previewed"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Field is the current state of one artist credit field as stored on disk.
// Values holds more than one element only for formats that store repeated
// values natively. Absent fields are simply not returned by targets, so an
// engine never sees them.
type Field struct {
	Name   string
	Values []string
	// Native reports whether the format stores each artist as a separate
	// repeated value rather than one delimited string.
	Native bool
	// Index distinguishes repeated occurrences of the same field name,
	// as in sidecar documents with several artist elements.
	Index int
}

// Change records a pending or applied rewrite of one field.
type Change struct {
	Field    string
	Index    int
	Original string
	Proposed string
	// Names is the canonical parsed list the target writes back, using
	// its own convention (joined string or native repeated values).
	Names []string
}

// Result reports the outcome of one file.
type Result struct {
	Path       string
	Status     Status
	Changes    []Change
	BackupPath string
	Err        error
}

// Target is one on-disk representation the engine can inspect and rewrite.
// Targets only translate between fields and bytes; the engine alone decides
// whether anything is written.
type Target interface {
	Path() string
	// Fields returns the artist credit fields currently present.
	Fields() ([]Field, error)
	// Apply writes the proposed values for the given changes.
	Apply(changes []Change) error
}

// Enricher is implemented by targets that can propose additional changes
// beyond artist normalization (genre replacement on sidecar documents).
// Enrich errors are lookup failures: reported, never fatal.
type Enricher interface {
	Enrich() ([]Change, error)
}

// Options controls a processing run.
type Options struct {
	// Preview computes and reports changes without writing anything.
	Preview bool
	// Backup copies the file aside before the first write.
	Backup bool
	// Now stamps backup names; nil means time.Now.
	Now func() time.Time
	// Warn receives non-fatal problems (lookup failures). Nil discards.
	Warn func(format string, args ...any)
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Options) warn(format string, args ...any) {
	if o.Warn != nil {
		o.Warn(format, args...)
	}
}

// Process runs the inspect/decide/backup/apply sequence for one file.
// Processing is idempotent: running it again right after a successful
// apply yields StatusUnchanged.
func Process(t Target, opts Options) Result {
	res := Result{Path: t.Path()}

	fields, err := t.Fields()
	if err != nil {
		res.Status = StatusFailed
		res.Err = Classify(ErrParse, err)
		return res
	}

	for _, f := range fields {
		if change, changed := detect(f); changed {
			res.Changes = append(res.Changes, change)
		}
	}

	if enricher, ok := t.(Enricher); ok {
		extra, err := enricher.Enrich()
		if err != nil {
			opts.warn("%s: %v", t.Path(), err)
		}
		res.Changes = append(res.Changes, extra...)
	}

	if len(res.Changes) == 0 {
		res.Status = StatusUnchanged
		return res
	}

	if opts.Preview {
		res.Status = StatusPreviewed
		return res
	}

	if opts.Backup {
		backupPath, err := backup(t.Path(), opts.now())
		if err != nil {
			res.Status = StatusFailed
			res.Err = Classify(ErrWrite, Classify(ErrBackup, err))
			return res
		}
		res.BackupPath = backupPath
	}

	if err := t.Apply(res.Changes); err != nil {
		res.Status = StatusFailed
		res.Err = Classify(ErrWrite, err)
		return res
	}

	res.Status = StatusApplied
	return res
}

// detect decides whether one field needs rewriting and builds the change
// record when it does.
func detect(f Field) (Change, bool) {
	parsed := parseAll(f.Values)

	if f.Native {
		// A native multi-value field is normalized when the stored list
		// already equals the parsed list element for element. This also
		// covers the single-element case: one stored value counts as
		// normalized only when it equals its own trimmed parse result.
		if equalLists(f.Values, parsed) {
			return Change{}, false
		}
		return Change{
			Field:    f.Name,
			Index:    f.Index,
			Original: strings.Join(f.Values, "; "),
			Proposed: strings.Join(parsed, "; "),
			Names:    parsed,
		}, true
	}

	// The stored value is compared untrimmed so stray whitespace counts
	// as a change and gets rewritten.
	original := strings.Join(f.Values, artist.Delimiter)
	proposed := artist.Join(parsed)
	if proposed == original {
		return Change{}, false
	}
	return Change{
		Field:    f.Name,
		Index:    f.Index,
		Original: original,
		Proposed: proposed,
		Names:    parsed,
	}, true
}

// parseAll parses every stored value and concatenates the results, so a
// native list like ["A feat. B", "C"] normalizes to ["A", "B", "C"].
func parseAll(values []string) []string {
	var names []string
	for _, v := range values {
		names = append(names, artist.Parse(v)...)
	}
	return names
}

func equalLists(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
