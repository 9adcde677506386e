package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Print the session's audit log",
	Long: `Print the audit log of the active session.

The log is itself an executable script: saved to a file it replays the
whole session via 'sb replay', which is the supported way to hand an
in-progress bisect to someone else.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return logRun()
	},
}

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Rebuild a session from a saved audit log",
	Long: `Rebuild a bisect session by re-executing a saved audit log.

The working copy must not already have a session in progress. Comment
lines carry context only; every other line is executed exactly as a live
command would be.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return replayRun(args[0])
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(replayCmd)
}

func logRun() error {
	app, err := getApp()
	if err != nil {
		return err
	}
	// Load first so a missing session reports properly instead of printing
	// an empty log.
	if _, err := app.Store.Load(); err != nil {
		return err
	}
	log, err := app.Store.ReadLog()
	if err != nil {
		return err
	}
	fmt.Fprint(ui.Out, log)
	return nil
}

func replayRun(path string) error {
	app, err := getApp()
	if err != nil {
		return err
	}
	return app.Replay(path)
}
