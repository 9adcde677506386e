// Package svntest provides an in-memory svn.Client for tests: a fixed linear
// history, a movable current revision, and a record of update calls.
package svntest

import (
	"strings"

	"github.com/joescharf/sb/internal/errs"
	"github.com/joescharf/sb/internal/models"
	"github.com/joescharf/sb/internal/svn"
)

// Oracle is a fake svn.Client backed by a newest-first revision list.
type Oracle struct {
	// Revisions is the working copy's line of history, newest first.
	Revisions []models.Revision
	// Current is the revision the fake working copy is at.
	Current models.Revision
	// Messages maps revisions to their first log line.
	Messages map[models.Revision]string
	// Updates records every Update call in order.
	Updates []models.Revision
	// UpdateErr, when set, makes Update fail.
	UpdateErr error
}

var _ svn.Client = (*Oracle)(nil)

// New creates an Oracle over the given newest-first history, positioned at
// the newest revision.
func New(revs ...models.Revision) *Oracle {
	o := &Oracle{Revisions: revs, Messages: map[models.Revision]string{}}
	if len(revs) > 0 {
		o.Current = revs[0]
	}
	return o
}

func (o *Oracle) contains(rev models.Revision) bool {
	for _, r := range o.Revisions {
		if r == rev {
			return true
		}
	}
	return false
}

func (o *Oracle) Resolve(wc, token string) (models.Revision, error) {
	switch strings.ToUpper(token) {
	case models.TokenHead:
		if len(o.Revisions) == 0 {
			return 0, errs.New(errs.CodeUnresolvableRevision, "empty history")
		}
		return o.Revisions[0], nil
	case models.TokenBase, models.TokenCommitted:
		return o.Current, nil
	case models.TokenPrev:
		for i, r := range o.Revisions {
			if r == o.Current && i+1 < len(o.Revisions) {
				return o.Revisions[i+1], nil
			}
		}
		return 0, errs.New(errs.CodeUnresolvableRevision, "no revision before %s", o.Current)
	}
	rev, ok := models.ParseLiteral(token)
	if !ok || !o.contains(rev) {
		return 0, errs.New(errs.CodeUnresolvableRevision,
			"revision %q is not part of the history of %s", token, wc)
	}
	return rev, nil
}

func (o *Oracle) History(wc string, newest, oldest models.Revision) ([]models.Revision, error) {
	var out []models.Revision
	for _, r := range o.Revisions {
		if r <= newest && r >= oldest {
			out = append(out, r)
		}
	}
	return out, nil
}

func (o *Oracle) CurrentRevision(wc string) (models.Revision, error) {
	return o.Current, nil
}

func (o *Oracle) OldestRevision(wc string) (models.Revision, error) {
	if len(o.Revisions) == 0 {
		return 0, errs.New(errs.CodeSVNFailed, "empty history")
	}
	return o.Revisions[len(o.Revisions)-1], nil
}

func (o *Oracle) FirstLogLine(wc string, rev models.Revision) (string, error) {
	return o.Messages[rev], nil
}

func (o *Oracle) Update(wc string, rev models.Revision) error {
	if o.UpdateErr != nil {
		return o.UpdateErr
	}
	o.Current = rev
	o.Updates = append(o.Updates, rev)
	return nil
}
