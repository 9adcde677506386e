package cmd

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joescharf/sb/internal/models"
	"github.com/joescharf/sb/internal/output"
)

var (
	historyLimit int
	historyAll   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived bisect sessions",
	Long: `List finished bisect sessions from the history database, newest first.

By default only sessions for the current working copy are shown; --all
lists every working copy.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyRun()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of sessions to show")
	historyCmd.Flags().BoolVar(&historyAll, "all", false, "Show sessions for every working copy")
	rootCmd.AddCommand(historyCmd)
}

func historyRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	app, err := getApp()
	if err != nil {
		return err
	}

	wc := app.Store.WorkingCopy()
	if historyAll {
		wc = ""
	}

	sessions, err := s.ListSessions(context.Background(), wc, historyLimit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		ui.Info("No archived sessions yet")
		return nil
	}

	headers := []string{"Ended", "Outcome", "Result", "Bounds", "Skips"}
	if historyAll {
		headers = append(headers, "Working Copy")
	}
	table := ui.Table(headers)

	for _, a := range sessions {
		row := []string{
			a.EndedAt.Local().Format("2006-01-02 15:04"),
			output.OutcomeColor(a.Outcome),
			historyResult(a),
			historyBounds(a),
			historySkips(a),
		}
		if historyAll {
			row = append(row, a.WorkingCopy)
		}
		table.Append(row)
	}
	return table.Render()
}

func historyResult(a *models.ArchivedSession) string {
	switch {
	case a.Culprit != nil:
		return output.Rev(*a.Culprit)
	case a.SuspectCount > 0:
		return output.Yellow(strconv.Itoa(a.SuspectCount) + " suspects")
	default:
		return "-"
	}
}

func historyBounds(a *models.ArchivedSession) string {
	bad, good := "?", "?"
	if a.Bad != nil {
		bad = a.Bad.String()
	}
	if a.Good != nil {
		good = a.Good.String()
	}
	return bad + ".." + good
}

func historySkips(a *models.ArchivedSession) string {
	if a.SkipCount == 0 {
		return "-"
	}
	return strconv.Itoa(a.SkipCount)
}
