package modifycmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"litdb/src/internal/filter"
	"litdb/src/internal/hooks"
	"litdb/src/internal/modify"
	"litdb/src/internal/session"
)

// New returns the modify command: apply one field modification to every
// selected entry.
func New() *cobra.Command {
	var (
		add           bool
		remove        bool
		dry           bool
		selection     bool
		or            bool
		preserveFiles bool
	)
	cmd := &cobra.Command{
		Use:   "modify <field>:<value> [filters or labels...]",
		Short: "Bulk-modify a field across matching entries",
		Long: `Apply one modification of the form <field>:<value> to every selected entry.
The value is a template; placeholders like {author} or {lower:title} are
filled from each entry before the modification applies.

By default the value overwrites the field. With --add it extends it (list
append, numeric addition, string concatenation) and with --remove it shrinks
it (list element removal, numeric subtraction; an empty value deletes the
field). Modifying the label field renames entries and their associated
files.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if add && remove {
				return fmt.Errorf("--add and --remove are mutually exclusive")
			}
			mode := modify.Overwrite
			if add {
				mode = modify.Append
			} else if remove {
				mode = modify.Remove
			}
			desc, err := modify.ParseDescriptor(args[0], mode)
			if err != nil {
				return err
			}
			s, err := session.Open()
			if err != nil {
				return err
			}
			preserve := s.Config.PreserveFiles
			if cmd.Flags().Changed("preserve-files") {
				preserve = preserveFiles
			}
			return run(cmd, s, desc, args[1:], selection, or, modify.Options{Dry: dry, PreserveFiles: preserve})
		},
	}
	cmd.Flags().BoolVar(&add, "add", false, "extend the field instead of overwriting it")
	cmd.Flags().BoolVar(&remove, "remove", false, "shrink the field instead of overwriting it")
	cmd.Flags().BoolVar(&dry, "dry", false, "report the changes without applying them")
	cmd.Flags().BoolVarP(&selection, "selection", "s", false, "treat the arguments as labels rather than filters")
	cmd.Flags().BoolVar(&or, "or", false, "combine filters with OR instead of AND")
	cmd.Flags().BoolVar(&preserveFiles, "preserve-files", false, "do NOT rename associated files on a label change")
	return cmd
}

func run(cmd *cobra.Command, s *session.Session, desc modify.Descriptor, args []string, selection, or bool, opts modify.Options) error {
	var selected []string
	if selection {
		for _, label := range args {
			if !s.Store.Has(label) {
				return fmt.Errorf("no entry with the label %q could be found", label)
			}
			selected = append(selected, label)
		}
	} else {
		preds, err := filter.ParseAll(args)
		if err != nil {
			return err
		}
		selected = filter.Select(s.Store.Entries(), preds, or)
	}
	if len(selected) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no entries matched")
		return nil
	}

	if !opts.Dry {
		s.Hooks.Publish(hooks.PreModify, &hooks.Payload{Command: "modify", Labels: selected})
	}

	en := &modify.Engine{Store: s.Store, Suffix: s.Config.Suffix}
	results := en.Apply(desc, selected, opts)

	out := cmd.OutOrStdout()
	changed := make([]string, 0, len(results))
	failed := 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Label, r.Err)
		case r.Skipped:
			fmt.Fprintf(out, "%s: no change\n", r.Label)
		default:
			fmt.Fprintln(out, r.Preview)
			label := r.Label
			if r.NewLabel != "" {
				label = r.NewLabel
			}
			changed = append(changed, label)
		}
	}

	if opts.Dry {
		fmt.Fprintf(out, "dry run: %d entries would change\n", len(changed))
		return nil
	}
	if len(changed) > 0 {
		s.Hooks.Publish(hooks.PostModify, &hooks.Payload{Command: "modify", Labels: changed})
		if err := s.Flush("modify", fmt.Sprintf("%d entries", len(changed))); err != nil {
			return err
		}
	}
	if failed > 0 {
		fmt.Fprintf(out, "%d entries modified, %d failed\n", len(changed), failed)
		return nil
	}
	fmt.Fprintf(out, "%d entries modified\n", len(changed))
	return nil
}
