package exportcmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"litdb/src/internal/filter"
	"litdb/src/internal/session"
)

// New returns the export command: write selected entries as a YAML stream,
// one document per entry, in the same format the database file uses.
func New() *cobra.Command {
	var (
		output    string
		selection bool
		or        bool
	)
	cmd := &cobra.Command{
		Use:   "export [filters or labels...]",
		Short: "Export entries as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Open()
			if err != nil {
				return err
			}
			return run(cmd, s, args, output, selection, or)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVarP(&selection, "selection", "s", false, "treat the arguments as labels rather than filters")
	cmd.Flags().BoolVar(&or, "or", false, "combine filters with OR instead of AND")
	return cmd
}

func run(cmd *cobra.Command, s *session.Session, args []string, output string, selection, or bool) error {
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

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, label := range selected {
		entry, ok := s.Store.Get(label)
		if !ok {
			continue
		}
		if err := enc.Encode(entry); err != nil {
			return err
		}
	}
	if err := enc.Close(); err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%d entries exported to %s\n", len(selected), output)
	}
	return nil
}
