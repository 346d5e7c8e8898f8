package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"litdb/src/cmd/litdb/addcmd"
	"litdb/src/cmd/litdb/deletecmd"
	"litdb/src/cmd/litdb/editcmd"
	"litdb/src/cmd/litdb/exportcmd"
	"litdb/src/cmd/litdb/initcmd"
	"litdb/src/cmd/litdb/listcmd"
	"litdb/src/cmd/litdb/modifycmd"
	"litdb/src/cmd/litdb/showcmd"
	"litdb/src/cmd/litdb/undocmd"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "litdb",
	Short: "Personal bibliography manager (flat YAML database, git-backed history)",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func execute() error {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(initcmd.New())
	rootCmd.AddCommand(addcmd.New())
	rootCmd.AddCommand(editcmd.New())
	rootCmd.AddCommand(modifycmd.New())
	rootCmd.AddCommand(deletecmd.New())
	rootCmd.AddCommand(listcmd.New())
	rootCmd.AddCommand(showcmd.New())
	rootCmd.AddCommand(exportcmd.New())
	rootCmd.AddCommand(undocmd.NewUndo())
	rootCmd.AddCommand(undocmd.NewRedo())
	return rootCmd.Execute()
}

func main() {
	if err := execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
