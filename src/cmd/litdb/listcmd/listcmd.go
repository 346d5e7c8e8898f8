package listcmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"litdb/src/internal/filter"
	"litdb/src/internal/session"
)

// New returns the list command: a filtered tabular view of the database.
func New() *cobra.Command {
	var (
		columns []string
		or      bool
	)
	cmd := &cobra.Command{
		Use:   "list [filters...]",
		Short: "List entries, optionally filtered",
		Long: `List database entries in a table. Filters have the form field=value
(case-insensitive substring match), field==value (full-value match), or
field!=value (negated match). Multiple filters combine with AND unless --or
is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Open()
			if err != nil {
				return err
			}
			return run(cmd, s, args, columns, or)
		},
	}
	cmd.Flags().StringSliceVarP(&columns, "columns", "c", []string{"label", "title"}, "columns to display")
	cmd.Flags().BoolVar(&or, "or", false, "combine filters with OR instead of AND")
	return cmd
}

func run(cmd *cobra.Command, s *session.Session, args, columns []string, or bool) error {
	preds, err := filter.ParseAll(args)
	if err != nil {
		return err
	}
	selected := filter.Select(s.Store.Entries(), preds, or)

	table := uitable.New()
	table.MaxColWidth = 60
	header := make([]interface{}, len(columns))
	bold := color.New(color.Bold)
	for i, c := range columns {
		header[i] = bold.Sprint(c)
	}
	table.AddRow(header...)
	for _, label := range selected {
		entry, ok := s.Store.Get(label)
		if !ok {
			continue
		}
		row := make([]interface{}, len(columns))
		for i, c := range columns {
			if v, ok := entry.Get(c); ok {
				row[i] = v.String()
			} else {
				row[i] = ""
			}
		}
		table.AddRow(row...)
	}
	fmt.Fprintln(cmd.OutOrStdout(), table)
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d entries\n", len(selected))
	return nil
}
