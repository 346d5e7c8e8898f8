// Package disambig resolves label collisions when inserting new entries.
//
// The resolution is modeled as a small state machine driven by an injected
// Decider, so the same deterministic core serves the interactive prompt, the
// --disambiguation command-line flag, and programmatic callers.
package disambig

import (
	"errors"
	"fmt"
	"log/slog"

	"litdb/src/internal/database"
	"litdb/src/internal/labels"
	"litdb/src/internal/schema"
)

// ErrCancelled aborts the addition of the current entry. No database
// mutation has occurred when it is returned.
var ErrCancelled = errors.New("entry addition cancelled")

// Action is a decision for one collision.
type Action int

const (
	// Keep discards the new entry in favor of the existing one. On the last
	// candidate of a collision chain it instead falls through to
	// disambiguation, so the new entry is never dropped silently.
	Keep Action = iota
	// Replace removes the existing entry and stores the new one under the
	// same label.
	Replace
	// Update merges the new entry's fields into the existing one and unions
	// the associated files; the label is unchanged.
	Update
	// Disambiguate appends the next unused suffix to the proposed label.
	Disambiguate
	// Cancel aborts the addition of the new entry entirely.
	Cancel
)

// String returns the action's command-line spelling.
func (a Action) String() string {
	switch a {
	case Keep:
		return "keep"
	case Replace:
		return "replace"
	case Update:
		return "update"
	case Disambiguate:
		return "disambiguate"
	case Cancel:
		return "cancel"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction maps a command-line spelling to an Action.
func ParseAction(s string) (Action, error) {
	switch s {
	case "keep":
		return Keep, nil
	case "replace":
		return Replace, nil
	case "update":
		return Update, nil
	case "disambiguate":
		return Disambiguate, nil
	case "cancel":
		return Cancel, nil
	}
	return Keep, fmt.Errorf("unknown disambiguation action %q", s)
}

// Context describes one collision presented to the decider. It is transient
// and only valid for the duration of a single add operation.
type Context struct {
	Proposed string        // the label the new entry asked for
	Existing *schema.Entry // the colliding entry currently in the store
	Incoming *schema.Entry // the new candidate entry
}

// Decider chooses an action for a collision. Implementations include the
// interactive prompt and fixed pre-supplied replies for scripted use.
type Decider interface {
	Decide(ctx Context) (Action, error)
}

// Fixed is a Decider that always answers with the same action.
type Fixed Action

// Decide returns the fixed action.
func (f Fixed) Decide(Context) (Action, error) { return Action(f), nil }

// Outcome reports how an entry ended up in the store.
type Outcome struct {
	Label  string // the resolved label the entry now lives under
	Action Action // the terminal action taken; Keep means no insertion
}

// Resolver inserts new entries into a store, resolving label collisions.
type Resolver struct {
	Store   *database.Store
	Decider Decider
	Suffix  labels.Suffix
}

// CandidateLabel returns the label the entry would receive if it were
// disambiguated against the current store state: the proposed label when
// free, otherwise the first unused suffixed variant. It is pure with respect
// to the store and is used by dry runs.
func (r *Resolver) CandidateLabel(proposed string) string {
	if !r.Store.Has(proposed) {
		return proposed
	}
	for n := 1; ; n++ {
		candidate := r.Suffix.Apply(proposed, n)
		if !r.Store.Has(candidate) {
			return candidate
		}
		slog.Warn("suffixed label also exists, advancing suffix",
			"label", candidate, "proposed", proposed)
	}
}

// Resolve inserts the entry under its proposed label, running the collision
// state machine when needed. After a non-cancelled return the store contains
// exactly one entry under Outcome.Label; ErrCancelled means zero mutation.
func (r *Resolver) Resolve(entry *schema.Entry) (Outcome, error) {
	proposed := entry.Label
	if !r.Store.Has(proposed) {
		if err := r.Store.Insert(entry); err != nil {
			return Outcome{}, err
		}
		return Outcome{Label: proposed, Action: Disambiguate}, nil
	}

	slog.Warn("label already exists, running disambiguation", "label", proposed)

	// The collision chain starts at the proposed label and continues through
	// its directly related (suffix) relatives.
	direct, indirect := r.Store.RelatedLabels(proposed, r.Suffix)
	if len(indirect) > 0 {
		slog.Warn("found indirectly related entries", "label", proposed, "related", indirect)
	}
	chain := []string{proposed}
	for _, l := range direct {
		if l != proposed {
			chain = append(chain, l)
		}
	}

	for i, candidate := range chain {
		existing, _ := r.Store.Get(candidate)
		action, err := r.Decider.Decide(Context{
			Proposed: candidate,
			Existing: existing,
			Incoming: entry,
		})
		if err != nil {
			return Outcome{}, err
		}
		switch action {
		case Cancel:
			slog.Warn("cancelling addition of new entry", "label", proposed)
			return Outcome{}, fmt.Errorf("%w: %q", ErrCancelled, proposed)
		case Replace:
			slog.Info("replacing existing entry", "label", candidate)
			entry.Label = candidate
			r.Store.Replace(entry)
			return Outcome{Label: candidate, Action: Replace}, nil
		case Update:
			slog.Info("updating existing entry with new data", "label", candidate)
			entry.Merge(existing, true)
			entry.Label = candidate
			r.Store.Replace(entry)
			return Outcome{Label: candidate, Action: Update}, nil
		case Disambiguate:
			return r.insertDisambiguated(entry, proposed)
		case Keep:
			if i == len(chain)-1 {
				// Keep on the final candidate falls through to
				// auto-disambiguation instead of dropping the new entry.
				slog.Info("no more related entries, triggering label disambiguation",
					"label", proposed)
				return r.insertDisambiguated(entry, proposed)
			}
			slog.Info("keeping existing entry, presenting next candidate",
				"label", candidate)
		}
	}
	// Unreachable: Keep on the last chain element disambiguates.
	return r.insertDisambiguated(entry, proposed)
}

func (r *Resolver) insertDisambiguated(entry *schema.Entry, proposed string) (Outcome, error) {
	label := r.CandidateLabel(proposed)
	entry.Label = label
	if err := r.Store.Insert(entry); err != nil {
		return Outcome{}, err
	}
	slog.Info("inserted entry under disambiguated label", "label", label, "proposed", proposed)
	return Outcome{Label: label, Action: Disambiguate}, nil
}
