// Package resolve turns user-supplied revision tokens and ranges into
// concrete revisions confirmed to exist in the working copy's history.
// Resolution always happens before any session mutation, so a bad token can
// never leave a session partially updated.
package resolve

import (
	"strings"

	"github.com/joescharf/sb/internal/errs"
	"github.com/joescharf/sb/internal/models"
	"github.com/joescharf/sb/internal/svn"
)

// Rev resolves a single revision token: a non-negative integer literal or one
// of the symbolic keywords (HEAD, BASE, PREV, COMMITTED).
func Rev(cli svn.Client, wc, token string) (models.Revision, error) {
	token = strings.TrimSpace(token)
	if !models.ValidToken(token) {
		return 0, errs.New(errs.CodeUnresolvableRevision,
			"%q is not a revision number or keyword (HEAD, BASE, PREV, COMMITTED)", token)
	}
	if models.IsKeyword(token) {
		token = strings.ToUpper(token)
	}
	return cli.Resolve(wc, token)
}

// Range resolves an "R" or "R:R" argument. The endpoints are normalized so
// that low <= high regardless of the order given. A single revision resolves
// to (r, r).
func Range(cli svn.Client, wc, arg string) (low, high models.Revision, err error) {
	first, second, found := strings.Cut(arg, ":")
	low, err = Rev(cli, wc, first)
	if err != nil {
		return 0, 0, err
	}
	if !found {
		return low, low, nil
	}
	high, err = Rev(cli, wc, second)
	if err != nil {
		return 0, 0, err
	}
	if high < low {
		low, high = high, low
	}
	return low, high, nil
}
