package cmd

import (
	"github.com/spf13/cobra"
)

var skipCmd = &cobra.Command{
	Use:   "skip [revision|range...]",
	Short: "Exclude revisions that cannot be tested",
	Long: `Exclude revisions from the search without passing judgement on them,
typically because the build is broken or the test cannot run there.

Accepts single revisions and N:M ranges (inclusive, either order):

  sb skip            # the revision currently checked out
  sb skip 1542
  sb skip 1530:1540 1544

Skipped revisions stay excluded until unskipped, even if the bounds move
past them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return skipRun(args, false)
	},
}

var unskipCmd = &cobra.Command{
	Use:   "unskip [revision|range...]",
	Short: "Return skipped revisions to the candidate set",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return skipRun(args, true)
	},
}

func init() {
	rootCmd.AddCommand(skipCmd)
	rootCmd.AddCommand(unskipCmd)
}

func skipRun(args []string, undo bool) error {
	app, err := getApp()
	if err != nil {
		return err
	}
	if undo {
		_, err = app.Unskip(args)
	} else {
		_, err = app.Skip(args)
	}
	return err
}
