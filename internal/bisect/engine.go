package bisect

import (
	"math/bits"

	"github.com/joescharf/sb/internal/errs"
	"github.com/joescharf/sb/internal/models"
)

// Plan is the outcome of one narrowing computation over the current bounds,
// history, and skip set.
type Plan struct {
	// Concluded is true when no further narrowing is possible.
	Concluded bool

	// FirstBad is set when the bad bound is conclusively the first bad
	// revision (no candidates remain at all).
	FirstBad *models.Revision

	// Suspects is the indistinguishable set {bad} ∪ candidates when every
	// remaining candidate is skipped.
	Suspects []models.Revision

	// Next is the midpoint to test when narrowing continues.
	Next models.Revision
	// Remaining is the size of the testable set.
	Remaining int
	// StepsLeft is the expected number of further narrowing steps,
	// floor(log2(Remaining)).
	StepsLeft int
}

// plan computes the next narrowing action. extant is the linear history from
// the bad bound down to the good bound, inclusive of both, newest first.
func plan(sess *models.Session, extant []models.Revision) Plan {
	bad, good := *sess.Bad, *sess.Good

	var candidates []models.Revision
	for _, r := range extant {
		if r == bad || r == good {
			continue
		}
		candidates = append(candidates, r)
	}

	var testable []models.Revision
	for _, r := range candidates {
		if sess.IsSkipped(r) {
			continue
		}
		testable = append(testable, r)
	}

	if len(testable) == 0 {
		if len(candidates) == 0 {
			return Plan{Concluded: true, FirstBad: &bad}
		}
		// Everything between the bounds is skipped: the defect appeared in
		// one of the candidates or in the bad bound itself, and no test can
		// tell them apart.
		return Plan{Concluded: true, Suspects: append([]models.Revision{bad}, candidates...)}
	}

	// Lower-median on the newest-first ordering: an even count biases the
	// probe toward the more recent half.
	return Plan{
		Next:      testable[len(testable)/2],
		Remaining: len(testable),
		StepsLeft: bits.Len(uint(len(testable))) - 1,
	}
}

// applyBad records rev as the newest known-bad revision. The strict ordering
// against the good bound is enforced before anything is mutated.
func applyBad(sess *models.Session, rev models.Revision) error {
	if sess.Good != nil && rev <= *sess.Good {
		return errs.New(errs.CodeInvalidBoundOrdering,
			"%s is not newer than the %s bound %s; %s bound unchanged",
			rev, sess.TermGood(), *sess.Good, sess.TermBad())
	}
	sess.Bad = &rev
	removeSkip(sess, rev)
	return nil
}

// applyGood records rev as the oldest known-good revision.
func applyGood(sess *models.Session, rev models.Revision) error {
	if sess.Bad != nil && rev >= *sess.Bad {
		return errs.New(errs.CodeInvalidBoundOrdering,
			"%s is not older than the %s bound %s; %s bound unchanged",
			rev, sess.TermBad(), *sess.Bad, sess.TermGood())
	}
	sess.Good = &rev
	removeSkip(sess, rev)
	return nil
}

// applySkip unions revs into the skip set and returns the revisions actually
// added. An empty result means the command was a no-op and nothing should be
// persisted or logged.
func applySkip(sess *models.Session, revs []models.Revision) []models.Revision {
	var added []models.Revision
	for _, r := range revs {
		if sess.IsSkipped(r) {
			continue
		}
		sess.Skipped = append(sess.Skipped, r)
		added = append(added, r)
	}
	sess.SortSkipped()
	return added
}

// applyUnskip removes revs from the skip set and returns the revisions
// actually removed.
func applyUnskip(sess *models.Session, revs []models.Revision) []models.Revision {
	var removed []models.Revision
	for _, r := range revs {
		if removeSkip(sess, r) {
			removed = append(removed, r)
		}
	}
	return removed
}

func removeSkip(sess *models.Session, rev models.Revision) bool {
	for i, r := range sess.Skipped {
		if r == rev {
			sess.Skipped = append(sess.Skipped[:i], sess.Skipped[i+1:]...)
			return true
		}
	}
	return false
}
