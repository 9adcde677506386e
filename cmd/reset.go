package cmd

import (
	"github.com/spf13/cobra"
)

var resetNoUpdate bool

var resetCmd = &cobra.Command{
	Use:   "reset [revision]",
	Short: "End the session and restore the working copy",
	Long: `End the bisect session, archive its outcome to the history database,
and update the working copy back to the revision it was at when the
session started (or to an explicit revision).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token := ""
		if len(args) == 1 {
			token = args[0]
		}
		return resetRun(token)
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetNoUpdate, "no-update", false, "Leave the working copy where it is")
	rootCmd.AddCommand(resetCmd)
}

func resetRun(token string) error {
	app, err := getApp()
	if err != nil {
		return err
	}

	// Archive is best-effort: reset still works without a usable database.
	if s, err := getStore(); err == nil {
		app.Archive = s
	} else {
		ui.VerboseLog("history database unavailable: %v", err)
	}

	return app.Reset(token, resetNoUpdate)
}
