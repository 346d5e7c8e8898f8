package undocmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"litdb/src/internal/history"
	"litdb/src/internal/hooks"
	"litdb/src/internal/session"
)

// NewUndo returns the undo command: revert the newest auto-committed change.
func NewUndo() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Revert the most recent change to the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Open()
			if err != nil {
				return err
			}
			if s.History == nil {
				return history.ErrNotConfigured
			}
			s.Hooks.Publish(hooks.PreUndo, &hooks.Payload{Command: "undo"})
			sha, err := s.History.Undo(force)
			if err != nil {
				return err
			}
			if err := s.Reload(); err != nil {
				return err
			}
			s.Hooks.Publish(hooks.PostUndo, &hooks.Payload{Command: "undo"})
			fmt.Fprintf(cmd.OutOrStdout(), "undid %s\n", sha)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "undo even a commit that was not auto-committed")
	return cmd
}

// NewRedo returns the redo command: revert the newest undo. When nothing has
// been undone it reports that and succeeds.
func NewRedo() *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Re-apply the most recently undone change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.Open()
			if err != nil {
				return err
			}
			if s.History == nil {
				return history.ErrNotConfigured
			}
			s.Hooks.Publish(hooks.PreRedo, &hooks.Payload{Command: "redo"})
			sha, err := s.History.Redo()
			if err != nil {
				return err
			}
			if sha == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to redo")
				return nil
			}
			if err := s.Reload(); err != nil {
				return err
			}
			s.Hooks.Publish(hooks.PostRedo, &hooks.Payload{Command: "redo"})
			fmt.Fprintf(cmd.OutOrStdout(), "redid %s\n", sha)
			return nil
		},
	}
}
