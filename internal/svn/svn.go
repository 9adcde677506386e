// Package svn wraps the Subversion CLI. It is the only place the rest of the
// tool talks to the version-control backend: revision lookup, linear history
// between two revisions, and moving the working copy.
package svn

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/joescharf/sb/internal/errs"
	"github.com/joescharf/sb/internal/models"
)

// Client defines the revision oracle consumed by the resolver, the bisect
// engine, and the automation runner. All methods take the working copy path
// since sb is always bound to one specific working copy.
type Client interface {
	// Resolve maps a revision token (literal or keyword) to a concrete
	// revision confirmed to exist on the working copy's line of history.
	Resolve(wc, token string) (models.Revision, error)
	// History returns the revisions between newest and oldest, inclusive of
	// both, ordered newest-first.
	History(wc string, newest, oldest models.Revision) ([]models.Revision, error)
	// CurrentRevision returns the revision the working copy is at.
	CurrentRevision(wc string) (models.Revision, error)
	// OldestRevision returns the first revision on the working copy's line
	// of history.
	OldestRevision(wc string) (models.Revision, error)
	// FirstLogLine returns the first line of rev's commit message.
	FirstLogLine(wc string, rev models.Revision) (string, error)
	// Update moves the working copy to rev.
	Update(wc string, rev models.Revision) error
}

// CLI implements Client by shelling out to the svn binary.
type CLI struct {
	Binary string
}

// NewClient returns a CLI oracle using the given svn binary ("" means "svn"
// from PATH).
func NewClient(binary string) *CLI {
	if binary == "" {
		binary = "svn"
	}
	return &CLI{Binary: binary}
}

// svnCmd runs svn with --non-interactive and returns trimmed stdout. On
// failure the stderr text is folded into the error, since svn puts its
// E-codes there.
func (c *CLI) svnCmd(args ...string) (string, error) {
	full := append([]string{"--non-interactive"}, args...)
	out, err := exec.Command(c.Binary, full...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", errs.Wrap(
				fmt.Errorf("%s", strings.TrimSpace(string(exitErr.Stderr))),
				errs.CodeSVNFailed, "svn %s", strings.Join(args, " "))
		}
		return "", errs.Wrap(err, errs.CodeSVNFailed, "svn %s", strings.Join(args, " "))
	}
	return strings.TrimSpace(string(out)), nil
}

// logRange builds the -r argument used to resolve a token. Keywords walk
// downward (TOKEN:0) so that on a subtree checkout they land on the newest
// revision of the working copy's own line of history; literals stay exact,
// so a revision that never touched this history is rejected.
func logRange(token string) string {
	if models.IsKeyword(token) {
		return token + ":0"
	}
	return token
}

func (c *CLI) Resolve(wc, token string) (models.Revision, error) {
	out, err := c.svnCmd("log", "-q", "-l", "1", "-r", logRange(token), wc)
	if err != nil {
		return 0, errs.Wrap(err, errs.CodeUnresolvableRevision,
			"revision %q not found in the history of %s", token, wc)
	}
	revs := ParseLogRevisions(out)
	if len(revs) == 0 {
		// svn exits zero but prints no entry when the revision exists in the
		// repository without touching this working copy's line of history.
		return 0, errs.New(errs.CodeUnresolvableRevision,
			"revision %q is not part of the history of %s", token, wc)
	}
	return revs[0], nil
}

func (c *CLI) History(wc string, newest, oldest models.Revision) ([]models.Revision, error) {
	out, err := c.svnCmd("log", "-q", "-r",
		fmt.Sprintf("%d:%d", newest, oldest), wc)
	if err != nil {
		return nil, err
	}
	return ParseLogRevisions(out), nil
}

func (c *CLI) CurrentRevision(wc string) (models.Revision, error) {
	out, err := c.svnCmd("info", "--show-item", "revision", wc)
	if err != nil {
		return 0, err
	}
	rev, ok := models.ParseLiteral(out)
	if !ok {
		return 0, errs.New(errs.CodeSVNFailed, "unexpected svn info output: %q", out)
	}
	return rev, nil
}

func (c *CLI) OldestRevision(wc string) (models.Revision, error) {
	out, err := c.svnCmd("log", "-q", "-l", "1", "-r", "1:HEAD", wc)
	if err != nil {
		return 0, err
	}
	revs := ParseLogRevisions(out)
	if len(revs) == 0 {
		return 0, errs.New(errs.CodeSVNFailed, "no history found for %s", wc)
	}
	return revs[0], nil
}

func (c *CLI) FirstLogLine(wc string, rev models.Revision) (string, error) {
	out, err := c.svnCmd("log", "-l", "1", "-r", rev.Arg(), wc)
	if err != nil {
		return "", err
	}
	return ParseFirstLogLine(out), nil
}

func (c *CLI) Update(wc string, rev models.Revision) error {
	full := []string{"--non-interactive", "update", "-r", rev.Arg(), wc}
	out, err := exec.Command(c.Binary, full...).CombinedOutput()
	if err != nil {
		return errs.Wrap(fmt.Errorf("%s", strings.TrimSpace(string(out))),
			errs.CodeUpdateFailed, "cannot update working copy to %s", rev)
	}
	return nil
}
