package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/sb/internal/bisect"
)

var (
	startBad      string
	startGood     string
	startTermBad  string
	startTermGood string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a bisect session",
	Long: `Start a bisect session in the working copy.

Bounds may be seeded immediately with --bad and --good; narrowing begins
as soon as both are known. Revisions are numbers (with or without an 'r'
prefix) or the keywords HEAD, BASE, PREV, and COMMITTED.

The bad/good vocabulary can be renamed for investigations where those
words read wrong, e.g.:

  sb start --term-bad=slow --term-good=fast`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startRun()
	},
}

func init() {
	startCmd.Flags().StringVar(&startBad, "bad", "", "Known-bad revision")
	startCmd.Flags().StringVar(&startGood, "good", "", "Known-good revision")
	startCmd.Flags().StringVar(&startTermBad, "term-bad", "", "Alternative name for the bad state")
	startCmd.Flags().StringVar(&startTermGood, "term-good", "", "Alternative name for the good state")
	rootCmd.AddCommand(startCmd)
}

func startRun() error {
	app, err := getApp()
	if err != nil {
		return err
	}

	opts := bisect.StartOptions{
		Bad:      startBad,
		Good:     startGood,
		TermBad:  startTermBad,
		TermGood: startTermGood,
	}
	if opts.TermBad == "" {
		opts.TermBad = viper.GetString("terms.bad")
	}
	if opts.TermGood == "" {
		opts.TermGood = viper.GetString("terms.good")
	}

	_, err = app.Start(opts)
	return err
}
