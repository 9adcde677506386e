package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	termsShowBad  bool
	termsShowGood bool
)

var termsCmd = &cobra.Command{
	Use:   "terms [--term-bad|--term-good]",
	Short: "Show the session's bad/good vocabulary",
	Long: `Show which words the active session uses for its two states. Custom
terms are chosen at 'sb start' with --term-bad and --term-good.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return termsRun()
	},
}

func init() {
	termsCmd.Flags().BoolVar(&termsShowBad, "term-bad", false, "Print only the term for the broken state")
	termsCmd.Flags().BoolVar(&termsShowGood, "term-good", false, "Print only the term for the working state")
	rootCmd.AddCommand(termsCmd)
}

func termsRun() error {
	if termsShowBad && termsShowGood {
		return fmt.Errorf("--term-bad and --term-good are mutually exclusive")
	}
	app, err := getApp()
	if err != nil {
		return err
	}
	sess, err := app.Store.Load()
	if err != nil {
		return err
	}
	switch {
	case termsShowBad:
		fmt.Fprintln(ui.Out, sess.TermBad())
	case termsShowGood:
		fmt.Fprintln(ui.Out, sess.TermGood())
	default:
		fmt.Fprintf(ui.Out, "The term for the broken state is %s\n", sess.TermBad())
		fmt.Fprintf(ui.Out, "The term for the working state is %s\n", sess.TermGood())
	}
	return nil
}
