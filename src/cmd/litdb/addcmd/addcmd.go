package addcmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"litdb/src/internal/disambig"
	"litdb/src/internal/hooks"
	"litdb/src/internal/importer"
	"litdb/src/internal/labels"
	"litdb/src/internal/names"
	"litdb/src/internal/prompt"
	"litdb/src/internal/schema"
	"litdb/src/internal/session"
)

// New returns the add command. New entries come either from a source file
// via an importer or are created manually from --label and --set pairs; all
// of them pass through the label disambiguator before reaching the store.
func New() *cobra.Command {
	var (
		from     string
		label    string
		files    []string
		sets     []string
		decision string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add entries to the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Open()
			if err != nil {
				return err
			}
			return run(cmd, s, options{from: from, label: label, files: files, sets: sets, decision: decision})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "YAML file with entry documents to import")
	cmd.Flags().StringVarP(&label, "label", "l", "", "label for the new entry")
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "files associated with this entry")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value pair for manual entry creation (repeatable)")
	cmd.Flags().StringVar(&decision, "disambiguation", "",
		"pre-supplied reply for a disambiguation prompt (keep|replace|update|disambiguate|cancel)")
	return cmd
}

type options struct {
	from     string
	label    string
	files    []string
	sets     []string
	decision string
}

func run(cmd *cobra.Command, s *session.Session, opts options) error {
	entries, err := collect(opts)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("neither an input to parse nor a label for manual creation specified")
	}

	if opts.label != "" && len(entries) == 1 {
		entries[0].Label = opts.label
	} else {
		for _, e := range entries {
			e.Label = labels.Format(e, s.Config.LabelTemplate)
		}
	}
	if len(opts.files) > 0 && len(entries) == 1 {
		entries[0].Files = append(entries[0].Files, opts.files...)
	}

	decider, err := pickDecider(opts.decision)
	if err != nil {
		return err
	}
	resolver := &disambig.Resolver{Store: s.Store, Decider: decider, Suffix: s.Config.Suffix}

	s.Hooks.Publish(hooks.PreAdd, &hooks.Payload{Command: "add", Entries: entries})

	var added []string
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			slog.Error("skipping invalid entry", "label", e.Label, "err", err)
			continue
		}
		outcome, err := resolver.Resolve(e)
		if err != nil {
			// A cancel or failure aborts only this entry, never the batch.
			if errors.Is(err, disambig.ErrCancelled) {
				slog.Warn("addition cancelled", "label", e.Label)
			} else {
				slog.Error("could not add entry", "label", e.Label, "err", err)
			}
			continue
		}
		added = append(added, outcome.Label)
	}

	s.Hooks.Publish(hooks.PostAdd, &hooks.Payload{Command: "add", Labels: added})

	if len(added) == 0 {
		slog.Warn("no entries were added")
		return nil
	}
	if err := s.Flush("add", "labels: "+strings.Join(added, ", ")); err != nil {
		return err
	}
	for _, l := range added {
		fmt.Fprintf(cmd.OutOrStdout(), "%q was added to the database\n", l)
	}
	return nil
}

// collect builds the list of new entries from the import source or the
// manual creation flags.
func collect(opts options) ([]*schema.Entry, error) {
	if opts.from != "" {
		return importer.YAML{}.Import(opts.from)
	}
	if opts.label == "" {
		return nil, nil
	}
	e := schema.New(opts.label)
	for _, pair := range opts.sets {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("--set must have the form field=value, got %q", pair)
		}
		setField(e, strings.TrimSpace(name), value)
	}
	return []*schema.Entry{e}, nil
}

// setField stores a value, converting integers, parsing author-like fields
// into people records, and turning repeated assignments to the same field
// into a list.
func setField(e *schema.Entry, name, value string) {
	if name == "author" || name == "editor" {
		if people := names.ParseList(value); len(people) > 0 {
			if prev, ok := e.Get(name); ok && prev.Kind == schema.KindPeople {
				people = append(prev.People, people...)
			}
			e.Set(name, schema.PeopleValue(people...))
			return
		}
	}
	if prev, ok := e.Get(name); ok && name != "note" {
		items := prev.List
		if prev.Kind != schema.KindList {
			items = []string{prev.String()}
		}
		e.Set(name, schema.ListValue(append(items, value)...))
		return
	}
	if n, err := strconv.Atoi(value); err == nil && value != "" {
		e.Set(name, schema.IntValue(n))
		return
	}
	e.Set(name, schema.StringValue(value))
}

func pickDecider(decision string) (disambig.Decider, error) {
	if decision == "" {
		return &prompt.EntryDecider{In: os.Stdin, Out: os.Stderr}, nil
	}
	action, err := disambig.ParseAction(decision)
	if err != nil {
		return nil, err
	}
	return disambig.Fixed(action), nil
}
