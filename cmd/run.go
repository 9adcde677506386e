package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/sb/internal/runner"
)

var runMaxSteps int

var runCmd = &cobra.Command{
	Use:   "run <command> [args...]",
	Short: "Bisect automatically by running a test command",
	Long: `Run a command against each candidate revision and use its exit status
as the verdict:

  0        the revision is good
  125      the revision cannot be tested; skip it
  1-127    the revision is bad
  128+     abort the automation (something is wrong with the command)

The command runs with the working copy as its current directory. The loop
ends when the first bad revision is identified or no testable candidates
remain.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRun(cmd, args)
	},
}

func init() {
	runCmd.Flags().IntVar(&runMaxSteps, "max-steps", 0, "Stop after this many steps (0 = no limit)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	app, err := getApp()
	if err != nil {
		return err
	}

	maxSteps := runMaxSteps
	if maxSteps == 0 {
		maxSteps = viper.GetInt("run.max_steps")
	}

	r := runner.New(app, ui, maxSteps)
	if err := r.Run(cmd.Context(), args[0], args[1:]...); err != nil {
		return fmt.Errorf("automation stopped: %w", err)
	}
	return nil
}
