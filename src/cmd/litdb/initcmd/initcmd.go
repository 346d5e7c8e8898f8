package initcmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"litdb/src/internal/config"
	"litdb/src/internal/history"
)

// New returns the init command that scaffolds the library.
func New() *cobra.Command {
	var withGit bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the library database file (optionally under git tracking)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return run(cmd, cfg, withGit)
		},
	}
	cmd.Flags().BoolVar(&withGit, "git", false, "initialize git tracking for the library directory")
	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config, withGit bool) error {
	dir := filepath.Dir(cfg.Database)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create library directory: %w", err)
	}
	if _, err := os.Stat(cfg.Database); os.IsNotExist(err) {
		if err := os.WriteFile(cfg.Database, nil, 0o644); err != nil {
			return fmt.Errorf("create database file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", cfg.Database)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", cfg.Database)
	}
	if !withGit {
		return nil
	}
	hist := history.New(cfg.Database)
	if !hist.IsInsideWorkTree() {
		if err := hist.Init(); err != nil {
			return err
		}
	}
	if _, err := hist.Commit("init", ""); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "initialized git tracking in %s\n", dir)
	return nil
}
