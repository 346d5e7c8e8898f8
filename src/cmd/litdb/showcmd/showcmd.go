package showcmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"litdb/src/internal/session"
)

// New returns the show command: dump a single entry as YAML.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "show <label>",
		Short: "Print one entry in database format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Open()
			if err != nil {
				return err
			}
			entry, ok := s.Store.Get(args[0])
			if !ok {
				return fmt.Errorf("no entry with the label %q could be found", args[0])
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(entry); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
