// Package bisect implements the session engine: bound transitions, the
// skip-aware narrowing algorithm, and the audit log that records every
// mutation as a replayable command line.
package bisect

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joescharf/sb/internal/dispatch"
	"github.com/joescharf/sb/internal/errs"
	"github.com/joescharf/sb/internal/models"
	"github.com/joescharf/sb/internal/output"
	"github.com/joescharf/sb/internal/resolve"
	"github.com/joescharf/sb/internal/session"
	"github.com/joescharf/sb/internal/svn"
)

// Archiver records finished sessions. Satisfied by store.Store; optional.
type Archiver interface {
	ArchiveSession(ctx context.Context, s *models.ArchivedSession) error
}

// App wires the oracle, the session store, and the UI into the bisect
// command surface. Every mutating operation follows the same sequence:
// resolve, load, apply, persist, append log, and only then touch the
// working copy.
type App struct {
	Oracle  svn.Client
	Store   *session.Store
	UI      *output.UI
	Archive Archiver // may be nil
}

// New creates an App bound to one working copy.
func New(oracle svn.Client, store *session.Store, ui *output.UI) *App {
	return &App{Oracle: oracle, Store: store, UI: ui}
}

// StartOptions carries the optional arguments of the start command. Bad and
// Good are unresolved revision tokens; empty means not supplied.
type StartOptions struct {
	Bad      string
	Good     string
	TermBad  string
	TermGood string
}

// Start creates a new session. It fails when one already exists; the session
// record's existence is the advisory lock against concurrent starts.
func (a *App) Start(opts StartOptions) (*Plan, error) {
	if a.Store.Exists() {
		return nil, errs.New(errs.CodeSessionExists,
			"a bisect session is already in progress (use 'sb reset' to abandon it)")
	}
	if err := dispatch.ValidateTerms(opts.TermBad, opts.TermGood); err != nil {
		return nil, err
	}

	wc := a.Store.WorkingCopy()
	current, err := a.Oracle.CurrentRevision(wc)
	if err != nil {
		return nil, err
	}
	head, err := a.Oracle.Resolve(wc, models.TokenHead)
	if err != nil {
		return nil, err
	}
	first, err := a.Oracle.OldestRevision(wc)
	if err != nil {
		return nil, err
	}

	sess := &models.Session{
		ID:               models.NewULID(),
		WorkingCopy:      wc,
		OriginalRevision: current,
		HeadRevision:     head,
		FirstRevision:    first,
		BadTerm:          opts.TermBad,
		GoodTerm:         opts.TermGood,
		CreatedAt:        time.Now().UTC(),
	}

	// Resolve both bounds before any mutation so a bad token leaves nothing
	// behind.
	if opts.Bad != "" {
		rev, err := resolve.Rev(a.Oracle, wc, opts.Bad)
		if err != nil {
			return nil, err
		}
		sess.Bad = &rev
	}
	if opts.Good != "" {
		rev, err := resolve.Rev(a.Oracle, wc, opts.Good)
		if err != nil {
			return nil, err
		}
		sess.Good = &rev
	}
	if sess.Ready() && *sess.Bad <= *sess.Good {
		return nil, errs.New(errs.CodeInvalidBoundOrdering,
			"the %s revision %s must be newer than the %s revision %s",
			sess.TermBad(), *sess.Bad, sess.TermGood(), *sess.Good)
	}

	if err := a.Store.Save(sess); err != nil {
		return nil, err
	}

	var lines []string
	if sess.Bad != nil {
		lines = append(lines, a.boundComment(sess.TermBad(), *sess.Bad))
	}
	if sess.Good != nil {
		lines = append(lines, a.boundComment(sess.TermGood(), *sess.Good))
	}
	lines = append(lines, startInvocation(sess))
	if err := a.Store.AppendLog(lines...); err != nil {
		return nil, err
	}

	a.UI.Success("Bisect session started at %s (history %s..%s)",
		output.Rev(current), output.Rev(first), output.Rev(head))

	if sess.Ready() {
		return a.step(sess)
	}
	a.waitingHint(sess)
	return nil, nil
}

// MarkBad records token (or the current revision) as known-bad.
func (a *App) MarkBad(token string) (*Plan, error) {
	return a.mark(token, true)
}

// MarkGood records token (or the current revision) as known-good.
func (a *App) MarkGood(token string) (*Plan, error) {
	return a.mark(token, false)
}

func (a *App) mark(token string, bad bool) (*Plan, error) {
	sess, err := a.Store.Load()
	if err != nil {
		return nil, err
	}
	rev, err := a.revOrCurrent(token)
	if err != nil {
		return nil, err
	}

	var term string
	if bad {
		term = sess.TermBad()
		err = applyBad(sess, rev)
	} else {
		term = sess.TermGood()
		err = applyGood(sess, rev)
	}
	if err != nil {
		return nil, err
	}

	if err := a.Store.Save(sess); err != nil {
		return nil, err
	}
	if err := a.Store.AppendLog(
		a.boundComment(term, rev),
		fmt.Sprintf("%s %s", term, rev.Arg()),
	); err != nil {
		return nil, err
	}

	a.UI.Info("Marked %s as %s", output.Rev(rev), term)
	if !sess.Ready() {
		a.waitingHint(sess)
		return nil, nil
	}
	return a.step(sess)
}

// Skip excludes revisions or ranges from consideration. Already-skipped
// revisions are a no-op: nothing is persisted or logged for them.
func (a *App) Skip(args []string) (*Plan, error) {
	return a.reskip(args, true)
}

// Unskip is the exact inverse of Skip on the same arguments.
func (a *App) Unskip(args []string) (*Plan, error) {
	return a.reskip(args, false)
}

func (a *App) reskip(args []string, skip bool) (*Plan, error) {
	sess, err := a.Store.Load()
	if err != nil {
		return nil, err
	}

	verb := "skip"
	if !skip {
		verb = "unskip"
	}

	// Resolve every argument before mutating anything.
	var revs []models.Revision
	var resolvedArgs []string
	if len(args) == 0 {
		rev, err := a.revOrCurrent("")
		if err != nil {
			return nil, err
		}
		revs = append(revs, rev)
		resolvedArgs = append(resolvedArgs, rev.Arg())
	}
	for _, arg := range args {
		if strings.Contains(arg, ":") {
			low, high, err := resolve.Range(a.Oracle, a.Store.WorkingCopy(), arg)
			if err != nil {
				return nil, err
			}
			span, err := a.Oracle.History(a.Store.WorkingCopy(), high, low)
			if err != nil {
				return nil, err
			}
			revs = append(revs, span...)
			resolvedArgs = append(resolvedArgs, fmt.Sprintf("%s:%s", low.Arg(), high.Arg()))
		} else {
			rev, err := resolve.Rev(a.Oracle, a.Store.WorkingCopy(), arg)
			if err != nil {
				return nil, err
			}
			revs = append(revs, rev)
			resolvedArgs = append(resolvedArgs, rev.Arg())
		}
	}

	var changed []models.Revision
	if skip {
		changed = applySkip(sess, revs)
	} else {
		changed = applyUnskip(sess, revs)
	}
	if len(changed) == 0 {
		a.UI.Info("Nothing to do: no change to the skipped set")
		return nil, nil
	}

	if err := a.Store.Save(sess); err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(changed)+1)
	for _, rev := range changed {
		lines = append(lines, a.boundComment(verb, rev))
	}
	lines = append(lines, fmt.Sprintf("%s %s", verb, strings.Join(resolvedArgs, " ")))
	if err := a.Store.AppendLog(lines...); err != nil {
		return nil, err
	}

	a.UI.Info("%d revision(s) %sped", len(changed), verb)
	if !sess.Ready() {
		return nil, nil
	}
	// A ready session re-narrows even when the skip touched revisions
	// outside the current interval; the midpoint may have moved.
	return a.step(sess)
}

// Reset archives and removes the session, then restores the working copy to
// its original revision (or to an explicit target).
func (a *App) Reset(token string, noUpdate bool) error {
	sess, err := a.Store.Load()
	if err != nil {
		return err
	}

	target := sess.OriginalRevision
	if token != "" {
		target, err = resolve.Rev(a.Oracle, a.Store.WorkingCopy(), token)
		if err != nil {
			return err
		}
	}

	if !noUpdate {
		if err := a.Oracle.Update(a.Store.WorkingCopy(), target); err != nil {
			return err
		}
		a.UI.Info("Working copy updated to %s", output.Rev(target))
	}

	a.archive(sess)

	if err := a.Store.Delete(); err != nil {
		return err
	}
	a.UI.Success("Bisect session removed")
	return nil
}

// Status describes the current session without side effects.
type Status struct {
	Session *models.Session
	// Plan is the narrowing computation for a ready session, nil otherwise.
	// Computing it performs no working-copy update.
	Plan *Plan
}

// Status loads the session and, when ready, computes the current plan.
func (a *App) Status() (*Status, error) {
	sess, err := a.Store.Load()
	if err != nil {
		return nil, err
	}
	st := &Status{Session: sess}
	if sess.Ready() {
		p, err := a.planFor(sess)
		if err != nil {
			return nil, err
		}
		st.Plan = p
	}
	return st, nil
}

// step computes the plan for a ready session, reports it, and advances the
// working copy when narrowing continues. The session was already persisted
// by the caller, so a crash here loses no recorded fact.
func (a *App) step(sess *models.Session) (*Plan, error) {
	p, err := a.planFor(sess)
	if err != nil {
		return nil, err
	}

	switch {
	case p.FirstBad != nil:
		msg, _ := a.Oracle.FirstLogLine(a.Store.WorkingCopy(), *p.FirstBad)
		a.UI.Success("%s is the first %s revision: %s",
			output.Rev(*p.FirstBad), sess.TermBad(), msg)

	case p.Suspects != nil:
		a.UI.Warning("Cannot narrow further: %d skipped revision(s) leave %d suspects",
			len(sess.Skipped), len(p.Suspects))
		for _, rev := range p.Suspects {
			msg, _ := a.Oracle.FirstLogLine(a.Store.WorkingCopy(), rev)
			a.UI.Info("  possible first %s revision: %s %s", sess.TermBad(), output.Rev(rev), msg)
		}

	default:
		a.UI.Info("Bisecting: %d revision(s) to test, roughly %d step(s) left",
			p.Remaining, p.StepsLeft)
		if err := a.Oracle.Update(a.Store.WorkingCopy(), p.Next); err != nil {
			return nil, err
		}
		a.UI.Info("Working copy updated to %s", output.Rev(p.Next))
	}
	return p, nil
}

// planFor fetches the extant history between the bounds and runs the
// narrowing computation. Read-only.
func (a *App) planFor(sess *models.Session) (*Plan, error) {
	extant, err := a.Oracle.History(a.Store.WorkingCopy(), *sess.Bad, *sess.Good)
	if err != nil {
		return nil, err
	}
	p := plan(sess, extant)
	return &p, nil
}

// archive records the session's final outcome; failures only warn since the
// session teardown must not depend on the history database.
func (a *App) archive(sess *models.Session) {
	if a.Archive == nil {
		return
	}

	rec := &models.ArchivedSession{
		ID:          sess.ID,
		WorkingCopy: sess.WorkingCopy,
		Bad:         sess.Bad,
		Good:        sess.Good,
		SkipCount:   len(sess.Skipped),
		Outcome:     models.OutcomeAbandoned,
		StartedAt:   sess.CreatedAt,
		EndedAt:     time.Now().UTC(),
	}
	if sess.Ready() {
		if p, err := a.planFor(sess); err == nil {
			switch {
			case p.FirstBad != nil:
				rec.Outcome = models.OutcomeConcluded
				rec.Culprit = p.FirstBad
			case p.Suspects != nil:
				rec.Outcome = models.OutcomeInconclusive
				rec.SuspectCount = len(p.Suspects)
			}
		}
	}

	if err := a.Archive.ArchiveSession(context.Background(), rec); err != nil {
		a.UI.Warning("Could not archive session: %v", err)
	}
}

// revOrCurrent resolves token, defaulting to the working copy's current
// revision when the argument was omitted.
func (a *App) revOrCurrent(token string) (models.Revision, error) {
	if token == "" {
		return a.Oracle.CurrentRevision(a.Store.WorkingCopy())
	}
	return resolve.Rev(a.Oracle, a.Store.WorkingCopy(), token)
}

// boundComment renders the "# <verb>: r<N> <first log line>" audit comment.
func (a *App) boundComment(verb string, rev models.Revision) string {
	msg, _ := a.Oracle.FirstLogLine(a.Store.WorkingCopy(), rev)
	return strings.TrimRight(fmt.Sprintf("# %s: %s %s", verb, rev, msg), " ")
}

// startInvocation reconstructs the replayable start command line.
func startInvocation(sess *models.Session) string {
	parts := []string{"start"}
	if sess.Bad != nil {
		parts = append(parts, "--bad="+sess.Bad.Arg())
	}
	if sess.Good != nil {
		parts = append(parts, "--good="+sess.Good.Arg())
	}
	if sess.BadTerm != "" {
		parts = append(parts, "--term-bad="+sess.BadTerm)
	}
	if sess.GoodTerm != "" {
		parts = append(parts, "--term-good="+sess.GoodTerm)
	}
	return strings.Join(parts, " ")
}

// waitingHint tells the user which bound is still missing.
func (a *App) waitingHint(sess *models.Session) {
	switch {
	case sess.Bad == nil && sess.Good == nil:
		a.UI.Info("Waiting for both a %s and a %s revision", sess.TermBad(), sess.TermGood())
	case sess.Bad == nil:
		a.UI.Info("Waiting for a %s revision", sess.TermBad())
	default:
		a.UI.Info("Waiting for a %s revision", sess.TermGood())
	}
}
