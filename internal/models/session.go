package models

import (
	"sort"
	"time"
)

// Built-in bound vocabulary. Sessions may rename these via --term-bad/--term-good.
const (
	DefaultBadTerm  = "bad"
	DefaultGoodTerm = "good"
)

// SchemaVersion is the session record encoding version. Bump when the YAML
// layout changes incompatibly.
const SchemaVersion = 1

// Session is the persisted state of one in-progress bisect investigation.
// At most one session exists per working copy. The type carries no engine
// logic; all narrowing decisions live in internal/bisect.
type Session struct {
	Version          int        `yaml:"v"`
	ID               string     `yaml:"id"`
	WorkingCopy      string     `yaml:"working_copy"`
	OriginalRevision Revision   `yaml:"original_revision"`
	HeadRevision     Revision   `yaml:"head_revision"`
	FirstRevision    Revision   `yaml:"first_revision"`
	Bad              *Revision  `yaml:"bad,omitempty"`
	Good             *Revision  `yaml:"good,omitempty"`
	Skipped          []Revision `yaml:"skipped,omitempty"`
	BadTerm          string     `yaml:"term_bad,omitempty"`
	GoodTerm         string     `yaml:"term_good,omitempty"`
	CreatedAt        time.Time  `yaml:"created_at"`
}

// Ready reports whether both bounds have been supplied, i.e. the session can
// be narrowed.
func (s *Session) Ready() bool {
	return s.Bad != nil && s.Good != nil
}

// TermBad returns the session's name for the "bad" verb.
func (s *Session) TermBad() string {
	if s.BadTerm != "" {
		return s.BadTerm
	}
	return DefaultBadTerm
}

// TermGood returns the session's name for the "good" verb.
func (s *Session) TermGood() string {
	if s.GoodTerm != "" {
		return s.GoodTerm
	}
	return DefaultGoodTerm
}

// IsSkipped reports whether rev is in the skip set.
func (s *Session) IsSkipped(rev Revision) bool {
	for _, r := range s.Skipped {
		if r == rev {
			return true
		}
	}
	return false
}

// SortSkipped normalizes the skip set to newest-first order, the order used
// everywhere revisions are displayed or iterated.
func (s *Session) SortSkipped() {
	sort.Slice(s.Skipped, func(i, j int) bool { return s.Skipped[i] > s.Skipped[j] })
}
