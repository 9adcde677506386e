package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joescharf/sb/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the active session",
	Long: `Show the active session: its bounds, skipped revisions, and how much
of the search remains. Read-only; the working copy is not touched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusRun()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun() error {
	app, err := getApp()
	if err != nil {
		return err
	}
	st, err := app.Status()
	if err != nil {
		return err
	}
	sess := st.Session

	fmt.Fprintf(ui.Out, "Working copy: %s\n", sess.WorkingCopy)
	fmt.Fprintf(ui.Out, "Started at:   %s (originally at %s)\n",
		sess.CreatedAt.Local().Format("2006-01-02 15:04"), output.Rev(sess.OriginalRevision))

	if sess.Bad != nil {
		fmt.Fprintf(ui.Out, "%-13s %s\n", sess.TermBad()+":", output.Rev(*sess.Bad))
	} else {
		fmt.Fprintf(ui.Out, "%-13s (not yet marked)\n", sess.TermBad()+":")
	}
	if sess.Good != nil {
		fmt.Fprintf(ui.Out, "%-13s %s\n", sess.TermGood()+":", output.Rev(*sess.Good))
	} else {
		fmt.Fprintf(ui.Out, "%-13s (not yet marked)\n", sess.TermGood()+":")
	}

	if len(sess.Skipped) > 0 {
		skipped := make([]string, len(sess.Skipped))
		for i, r := range sess.Skipped {
			skipped[i] = r.String()
		}
		fmt.Fprintf(ui.Out, "Skipped:      %s\n", strings.Join(skipped, " "))
	}

	switch {
	case st.Plan == nil:
		ui.Info("Waiting for both bounds before narrowing can begin")
	case st.Plan.FirstBad != nil:
		ui.Success("Concluded: %s is the first %s revision",
			output.Rev(*st.Plan.FirstBad), sess.TermBad())
	case st.Plan.Suspects != nil:
		suspects := make([]string, len(st.Plan.Suspects))
		for i, r := range st.Plan.Suspects {
			suspects[i] = r.String()
		}
		ui.Warning("Inconclusive: suspects are %s", strings.Join(suspects, " "))
	default:
		ui.Info("Testing %s: %d revision(s) to test, roughly %d step(s) left",
			output.Rev(st.Plan.Next), st.Plan.Remaining, st.Plan.StepsLeft)
	}
	return nil
}
