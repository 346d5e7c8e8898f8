package deletecmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"litdb/src/internal/hooks"
	"litdb/src/internal/session"
)

// New returns the delete command. Deleting an unknown label is a no-op so
// batch deletes never fail halfway through.
func New() *cobra.Command {
	var preserveFiles bool
	cmd := &cobra.Command{
		Use:   "delete <label>...",
		Short: "Remove entries from the database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Open()
			if err != nil {
				return err
			}
			preserve := s.Config.PreserveFiles
			if cmd.Flags().Changed("preserve-files") {
				preserve = preserveFiles
			}
			return run(cmd, s, args, preserve)
		},
	}
	cmd.Flags().BoolVar(&preserveFiles, "preserve-files", false, "keep associated files on disk")
	return cmd
}

func run(cmd *cobra.Command, s *session.Session, labels []string, preserve bool) error {
	s.Hooks.Publish(hooks.PreDelete, &hooks.Payload{Command: "delete", Labels: labels})

	deleted := make([]string, 0, len(labels))
	for _, label := range labels {
		entry, ok := s.Store.Get(label)
		if !ok {
			// Store.Delete already warns; nothing else to do for this label.
			s.Store.Delete(label)
			continue
		}
		if !preserve {
			for _, path := range entry.Files {
				if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
					slog.Warn("could not remove associated file", "label", label, "path", path, "err", err)
				}
			}
		}
		s.Store.Delete(label)
		deleted = append(deleted, label)
	}

	if len(deleted) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing to delete")
		return nil
	}

	s.Hooks.Publish(hooks.PostDelete, &hooks.Payload{Command: "delete", Labels: deleted})

	if err := s.Flush("delete", "labels: "+strings.Join(deleted, ", ")); err != nil {
		return err
	}
	for _, label := range deleted {
		fmt.Fprintf(cmd.OutOrStdout(), "%q was removed from the database\n", label)
	}
	return nil
}
