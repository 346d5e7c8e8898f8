// Package modify applies a bulk field transformation across a selected set
// of entries. Each entry is processed independently: the value template is
// evaluated against that entry's own fields, and a failure on one entry
// never rolls back the others.
package modify

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"litdb/src/internal/database"
	"litdb/src/internal/disambig"
	"litdb/src/internal/labels"
	"litdb/src/internal/relocate"
	"litdb/src/internal/schema"
	"litdb/src/internal/template"
)

// Mode selects how the evaluated template value combines with the existing
// field value.
type Mode int

const (
	// Overwrite replaces the field value outright.
	Overwrite Mode = iota
	// Append adds to the field: list append, numeric addition, or string
	// concatenation; an absent field becomes a one-element list.
	Append
	// Remove subtracts from the field: list element removal or numeric
	// subtraction. An empty value removes the field entirely.
	Remove
)

// Descriptor is one bulk modification: set, extend, or shrink a field using
// a template evaluated per entry.
type Descriptor struct {
	Field    string
	Template string
	Mode     Mode
}

// ParseDescriptor parses the command-line "<field>:<template>" form. Only
// the first colon splits, so templates may contain colons.
func ParseDescriptor(s string, mode Mode) (Descriptor, error) {
	field, tmpl, ok := strings.Cut(s, ":")
	if !ok || strings.TrimSpace(field) == "" {
		return Descriptor{}, fmt.Errorf("modification must have the form <field>:<value>, got %q", s)
	}
	return Descriptor{Field: strings.TrimSpace(field), Template: tmpl, Mode: mode}, nil
}

// Options controls a modification run.
type Options struct {
	// Dry computes and reports the changes without mutating the store, the
	// filesystem, or the history.
	Dry bool
	// PreserveFiles skips renaming associated files when a label changes.
	PreserveFiles bool
}

// Result is the per-entry outcome of a modification run.
type Result struct {
	Label    string // the label the entry was selected under
	NewLabel string // set when the modification renamed the entry
	Preview  string // human-readable description of the change
	Skipped  bool   // the modification was a no-op for this entry
	Err      error  // per-entry failure; other entries are unaffected
}

// Engine executes modifications against a store.
type Engine struct {
	Store  *database.Store
	Suffix labels.Suffix
}

// Apply runs the modification over the selected labels, independently per
// entry. In dry mode it is fully side-effect free.
func (en *Engine) Apply(d Descriptor, selected []string, opts Options) []Result {
	results := make([]Result, 0, len(selected))
	for _, label := range selected {
		results = append(results, en.applyOne(d, label, opts))
	}
	return results
}

func (en *Engine) applyOne(d Descriptor, label string, opts Options) Result {
	res := Result{Label: label}
	entry, ok := en.Store.Get(label)
	if !ok {
		slog.Warn("no entry with this label", "label", label)
		res.Err = fmt.Errorf("no entry with label %q", label)
		return res
	}

	value := template.Eval(d.Template, func(name string) (string, bool) {
		v, ok := entry.Get(name)
		if !ok {
			return "", false
		}
		return v.String(), true
	})

	if value == "" && d.Field == "label" {
		res.Err = fmt.Errorf("the label field may not be empty and cannot be removed")
		return res
	}
	if value == "" && d.Mode == Overwrite {
		slog.Warn("empty modification value overwrites the field; use remove mode to delete it",
			"label", label, "field", d.Field)
	}

	prev, hadPrev := entry.Get(d.Field)
	next, deleteField, err := combine(prev, hadPrev, value, d.Mode)
	if err != nil {
		slog.Warn("unexpected field type for modification, leaving unchanged",
			"label", label, "field", d.Field, "err", err)
		res.Err = err
		return res
	}

	if !deleteField && hadPrev && next.Equal(prev) {
		slog.Info("new and previous values match, skipping", "label", label, "field", d.Field)
		res.Skipped = true
		return res
	}

	if d.Field == "label" {
		return en.applyRename(entry, label, next.String(), opts, res)
	}

	switch {
	case deleteField:
		res.Preview = fmt.Sprintf("%s: removing field %q", label, d.Field)
	case hadPrev:
		res.Preview = fmt.Sprintf("%s: changing field %q from %q to %q", label, d.Field, prev.String(), next.String())
	default:
		res.Preview = fmt.Sprintf("%s: adding field %q = %q", label, d.Field, next.String())
	}
	if opts.Dry {
		return res
	}
	if deleteField {
		entry.Delete(d.Field)
	} else {
		entry.Set(d.Field, next)
	}
	return res
}

// applyRename handles the special case of modifying the label field: the new
// label is routed through the disambiguator, then the store rename and file
// relocation are performed as one logical unit.
func (en *Engine) applyRename(entry *schema.Entry, oldLabel, proposed string, opts Options, res Result) Result {
	proposed = labels.Normalize(proposed)
	// Bulk renames never prompt: collisions always take the first free
	// suffixed label.
	resolver := &disambig.Resolver{Store: en.Store, Suffix: en.Suffix}
	if opts.Dry {
		candidate := proposed
		if candidate != oldLabel {
			candidate = resolver.CandidateLabel(proposed)
		}
		res.NewLabel = candidate
		res.Preview = fmt.Sprintf("%s: renaming entry to %q", oldLabel, candidate)
		for _, r := range relocate.Plan(entry, oldLabel, candidate) {
			if !opts.PreserveFiles {
				res.Preview += fmt.Sprintf("\n%s: renaming associated file %q to %q", oldLabel, r[0], r[1])
			}
		}
		return res
	}
	newLabel := proposed
	if newLabel != oldLabel {
		newLabel = resolver.CandidateLabel(proposed)
	}
	if err := en.Store.Rename(oldLabel, newLabel); err != nil {
		res.Err = err
		return res
	}
	if err := relocate.Relocate(entry, oldLabel, newLabel, opts.PreserveFiles); err != nil {
		// The rename and the relocation are one unit: a relocation failure
		// aborts the label change as well.
		if rerr := en.Store.Rename(newLabel, oldLabel); rerr != nil {
			slog.Error("could not restore label after relocation failure", "label", oldLabel, "err", rerr)
		}
		res.Err = err
		return res
	}
	res.NewLabel = newLabel
	res.Preview = fmt.Sprintf("%s: renamed entry to %q", oldLabel, newLabel)
	return res
}

// combine merges the evaluated template value with the previous field value
// according to the mode. The boolean result requests field deletion.
func combine(prev schema.Value, hadPrev bool, value string, mode Mode) (schema.Value, bool, error) {
	switch mode {
	case Overwrite:
		return coerce(value), false, nil
	case Append:
		if !hadPrev {
			// An absent field becomes a one-element list so further appends
			// keep accumulating values.
			return schema.ListValue(value), false, nil
		}
		switch prev.Kind {
		case schema.KindList:
			return schema.ListValue(append(append([]string(nil), prev.List...), value)...), false, nil
		case schema.KindInt:
			n, err := strconv.Atoi(value)
			if err != nil {
				return schema.Value{}, false, fmt.Errorf("cannot add %q to numeric field", value)
			}
			return schema.IntValue(prev.Int + n), false, nil
		case schema.KindString:
			return schema.StringValue(prev.Str + value), false, nil
		default:
			return schema.Value{}, false, fmt.Errorf("cannot append to a structured field")
		}
	case Remove:
		if value == "" {
			return schema.Value{}, true, nil
		}
		if !hadPrev {
			return prev, false, fmt.Errorf("field is not set")
		}
		switch prev.Kind {
		case schema.KindList:
			kept := make([]string, 0, len(prev.List))
			for _, item := range prev.List {
				if item != value {
					kept = append(kept, item)
				}
			}
			if len(kept) == len(prev.List) {
				slog.Warn("value not present in list field", "value", value)
			}
			return schema.ListValue(kept...), false, nil
		case schema.KindInt:
			n, err := strconv.Atoi(value)
			if err != nil {
				return schema.Value{}, false, fmt.Errorf("cannot subtract %q from numeric field", value)
			}
			return schema.IntValue(prev.Int - n), false, nil
		default:
			return schema.Value{}, false, fmt.Errorf("cannot remove from a string field")
		}
	}
	return schema.Value{}, false, fmt.Errorf("unknown mode %d", mode)
}

// coerce turns an evaluated template value into a field value, recognizing
// integers.
func coerce(value string) schema.Value {
	if n, err := strconv.Atoi(value); err == nil && value != "" {
		return schema.IntValue(n)
	}
	return schema.StringValue(value)
}
