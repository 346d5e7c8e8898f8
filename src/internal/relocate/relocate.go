// Package relocate renames the files associated with an entry when its label
// changes. The batch of renames is all-or-nothing: a failure part-way rolls
// back every rename already performed before the error is surfaced.
package relocate

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"litdb/src/internal/schema"
)

// renameFile is swapped out in tests to simulate rename failures.
var renameFile = os.Rename

// Failure reports a failed relocation batch. RolledBack lists the renames
// that were undone again; RollbackErrs collects any paths that could not be
// restored.
type Failure struct {
	Path         string
	Err          error
	RolledBack   []string
	RollbackErrs []error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if len(f.RollbackErrs) > 0 {
		return fmt.Sprintf("relocating %s: %v (rollback incomplete: %v)", f.Path, f.Err, f.RollbackErrs)
	}
	return fmt.Sprintf("relocating %s: %v (all completed renames rolled back)", f.Path, f.Err)
}

// Unwrap exposes the underlying filesystem error.
func (f *Failure) Unwrap() error { return f.Err }

type rename struct {
	from, to string
}

// Plan returns the renames that relocating the entry would perform: every
// associated file and note whose filename stem equals oldLabel moves to the
// same path with stem newLabel, keeping the extension.
func Plan(e *schema.Entry, oldLabel, newLabel string) [][2]string {
	var out [][2]string
	for _, r := range plan(e, oldLabel, newLabel) {
		out = append(out, [2]string{r.from, r.to})
	}
	return out
}

func plan(e *schema.Entry, oldLabel, newLabel string) []rename {
	var renames []rename
	add := func(path string) {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if stem != oldLabel && !strings.HasPrefix(stem, oldLabel+"_") {
			return
		}
		newStem := newLabel + strings.TrimPrefix(stem, oldLabel)
		target := filepath.Join(filepath.Dir(path), newStem+filepath.Ext(path))
		renames = append(renames, rename{from: path, to: target})
	}
	for _, f := range e.Files {
		add(f)
	}
	if e.Notes != "" {
		add(e.Notes)
	}
	return renames
}

// Relocate renames the entry's associated files and note to track a label
// change and rewrites the entry's paths on success. With preserve set it
// does nothing. On any single failure all completed renames are undone and a
// *Failure is returned; the caller must then abort the label change itself.
func Relocate(e *schema.Entry, oldLabel, newLabel string, preserve bool) error {
	if preserve || oldLabel == newLabel {
		return nil
	}
	renames := plan(e, oldLabel, newLabel)
	var done []rename
	for _, r := range renames {
		if _, err := os.Stat(r.to); err == nil {
			return rollback(done, &Failure{Path: r.from, Err: fmt.Errorf("target %s already exists", r.to)})
		}
		if err := renameFile(r.from, r.to); err != nil {
			return rollback(done, &Failure{Path: r.from, Err: err})
		}
		slog.Debug("renamed associated file", "from", r.from, "to", r.to)
		done = append(done, r)
	}
	apply(e, renames)
	return nil
}

// rollback undoes completed renames in reverse order.
func rollback(done []rename, f *Failure) error {
	for i := len(done) - 1; i >= 0; i-- {
		r := done[i]
		if err := renameFile(r.to, r.from); err != nil {
			f.RollbackErrs = append(f.RollbackErrs, fmt.Errorf("restore %s: %w", r.from, err))
			continue
		}
		f.RolledBack = append(f.RolledBack, r.from)
	}
	slog.Error("file relocation failed", "path", f.Path, "err", f.Err,
		"rolled_back", len(f.RolledBack), "rollback_failures", len(f.RollbackErrs))
	return f
}

// apply rewrites the entry's paths to the rename targets.
func apply(e *schema.Entry, renames []rename) {
	byFrom := map[string]string{}
	for _, r := range renames {
		byFrom[r.from] = r.to
	}
	for i, f := range e.Files {
		if to, ok := byFrom[f]; ok {
			e.Files[i] = to
		}
	}
	if to, ok := byFrom[e.Notes]; ok {
		e.Notes = to
	}
}
