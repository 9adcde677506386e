package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/sb/internal/errs"
)

// The bad/good verbs always exist under their canonical names; a session's
// custom terms are folded onto them before cobra parses the command line.

var badCmd = &cobra.Command{
	Use:   "bad [revision]",
	Short: "Mark a revision as bad",
	Long: `Mark a revision as bad (exhibiting the defect).

Without an argument, marks the revision currently checked out. If the
session renamed the terms, the new name works the same way.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return markRun(args, true)
	},
}

var goodCmd = &cobra.Command{
	Use:   "good [revision]",
	Short: "Mark a revision as good",
	Long: `Mark a revision as good (free of the defect).

Without an argument, marks the revision currently checked out.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return markRun(args, false)
	},
}

func init() {
	rootCmd.AddCommand(badCmd)
	rootCmd.AddCommand(goodCmd)
}

func markRun(args []string, bad bool) error {
	app, err := getApp()
	if err != nil {
		return err
	}

	token := ""
	if len(args) == 1 {
		token = args[0]
	}

	if bad {
		_, err = app.MarkBad(token)
	} else {
		_, err = app.MarkGood(token)
	}
	return reportAdvisory(err)
}

// reportAdvisory downgrades advisory errors to a warning so the command
// still exits zero; the session was not modified.
func reportAdvisory(err error) error {
	if err == nil {
		return nil
	}
	if errs.Advisory(err) {
		ui.Warning("%v", err)
		return nil
	}
	return err
}
