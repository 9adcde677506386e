package models

import "time"

// SessionOutcome classifies how a bisect session ended.
type SessionOutcome string

const (
	// OutcomeConcluded: the first bad revision was identified exactly.
	OutcomeConcluded SessionOutcome = "concluded"
	// OutcomeInconclusive: skips left an indistinguishable set of suspects.
	OutcomeInconclusive SessionOutcome = "inconclusive"
	// OutcomeAbandoned: the session was reset before concluding.
	OutcomeAbandoned SessionOutcome = "abandoned"
)

// ArchivedSession is a finished bisect session as recorded in the history
// database.
type ArchivedSession struct {
	ID           string
	WorkingCopy  string
	Bad          *Revision
	Good         *Revision
	Culprit      *Revision // set only for concluded sessions
	SuspectCount int       // size of the indistinguishable set, if inconclusive
	SkipCount    int
	Outcome      SessionOutcome
	StartedAt    time.Time
	EndedAt      time.Time
}
