// Package runner drives a bisect session automatically by executing a test
// command against each candidate revision and classifying its exit status.
package runner

import (
	"context"
	"os/exec"

	"github.com/joescharf/sb/internal/bisect"
	"github.com/joescharf/sb/internal/errs"
	"github.com/joescharf/sb/internal/output"
)

// Exit codes follow the git-bisect-run convention: 0 is good, 125 asks for a
// skip, anything else below 128 is bad, and 128+ aborts the automation.
const (
	exitSkip  = 125
	exitAbort = 128
)

// Runner repeatedly runs a command and feeds the verdicts back into the
// session until it concludes.
type Runner struct {
	App      *bisect.App
	UI       *output.UI
	MaxSteps int

	// Exec builds the command for one step; overridable in tests.
	Exec func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// New creates a Runner over an existing session.
func New(app *bisect.App, ui *output.UI, maxSteps int) *Runner {
	return &Runner{App: app, UI: ui, MaxSteps: maxSteps, Exec: exec.CommandContext}
}

// Run executes the automation loop. The session must already have both
// bounds; each iteration reloads the session, runs the command at the
// current revision, and applies the verdict through the same operations a
// human would use.
func (r *Runner) Run(ctx context.Context, name string, args ...string) error {
	for steps := 0; ; steps++ {
		if r.MaxSteps > 0 && steps >= r.MaxSteps {
			return errs.New(errs.CodeAutomationAbort,
				"stopped after %d steps without a conclusion", r.MaxSteps)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		sess, err := r.App.Store.Load()
		if err != nil {
			return err
		}
		if !sess.Ready() {
			return errs.New(errs.CodeNoActiveSession,
				"cannot run: the session needs both a %s and a %s revision",
				sess.TermBad(), sess.TermGood())
		}

		cur, err := r.App.Oracle.CurrentRevision(r.App.Store.WorkingCopy())
		if err != nil {
			return err
		}

		r.UI.Info("Running %s at %s", name, output.Rev(cur))
		code, err := r.runOnce(ctx, name, args)
		if err != nil {
			return err
		}

		var plan *bisect.Plan
		switch {
		case code == 0:
			plan, err = r.App.MarkGood(cur.Arg())
		case code == exitSkip:
			plan, err = r.App.Skip([]string{cur.Arg()})
		case code > 0 && code < exitAbort:
			plan, err = r.App.MarkBad(cur.Arg())
		default:
			return errs.New(errs.CodeAutomationAbort,
				"command exited with status %d at %s", code, cur)
		}
		if err != nil {
			return err
		}

		if plan == nil {
			// The verdict changed nothing (a repeated skip, for instance), so
			// another run at the same revision cannot make progress.
			return errs.New(errs.CodeAutomationAbort,
				"no progress at %s: the verdict did not change the session", cur)
		}
		if plan.Concluded {
			return nil
		}
	}
}

// runOnce executes the command in the working copy and returns its exit
// code. A command that could not be started at all is a hard error.
func (r *Runner) runOnce(ctx context.Context, name string, args []string) (int, error) {
	cmd := r.Exec(ctx, name, args...)
	cmd.Dir = r.App.Store.WorkingCopy()
	cmd.Stdout = r.UI.Out
	cmd.Stderr = r.UI.ErrOut

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		code := exitErr.ExitCode()
		if code < 0 {
			// Killed by a signal.
			return 0, errs.Wrap(err, errs.CodeAutomationAbort, "command terminated by signal")
		}
		return code, nil
	}
	return 0, errs.Wrap(err, errs.CodeAutomationAbort, "could not run %s", name)
}
