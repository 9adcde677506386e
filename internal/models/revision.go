package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Revision is a Subversion revision number. Revisions are totally ordered by
// their numeric value; r0 is the repository root.
type Revision int64

// String formats the revision the way svn prints it, e.g. "r1234".
func (r Revision) String() string {
	return fmt.Sprintf("r%d", r)
}

// Arg formats the revision as a bare number for use as a command argument.
func (r Revision) Arg() string {
	return strconv.FormatInt(int64(r), 10)
}

// Symbolic revision keywords accepted wherever a revision argument is.
// These mirror svn's own revision keywords.
const (
	TokenHead      = "HEAD"
	TokenBase      = "BASE"
	TokenPrev      = "PREV"
	TokenCommitted = "COMMITTED"
)

// IsKeyword reports whether token is one of the symbolic revision keywords
// (case-insensitive).
func IsKeyword(token string) bool {
	switch strings.ToUpper(token) {
	case TokenHead, TokenBase, TokenPrev, TokenCommitted:
		return true
	}
	return false
}

// ParseLiteral parses a non-negative integer revision literal. It accepts an
// optional leading "r" (as in "r123") since that is how revisions are printed.
func ParseLiteral(token string) (Revision, bool) {
	s := strings.TrimPrefix(strings.TrimPrefix(token, "r"), "R")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return Revision(n), true
}

// ValidToken reports whether token is syntactically a revision argument:
// either an integer literal or a symbolic keyword.
func ValidToken(token string) bool {
	if IsKeyword(token) {
		return true
	}
	_, ok := ParseLiteral(token)
	return ok
}
