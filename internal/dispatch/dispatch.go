// Package dispatch resolves command verbs: unambiguous prefix matching over
// the fixed built-in verb set, extended with a session's custom bad/good term
// names. It is shared by the CLI argv rewrite and by audit-log replay so both
// go through identical resolution.
package dispatch

import (
	"regexp"
	"sort"
	"strings"

	"github.com/joescharf/sb/internal/errs"
	"github.com/joescharf/sb/internal/models"
)

// builtins is the fixed command-name set. Custom terms are validated against
// it at session start.
var builtins = []string{
	"bad",
	"completion",
	"config",
	"good",
	"help",
	"history",
	"log",
	"mcp",
	"replay",
	"reset",
	"run",
	"skip",
	"start",
	"status",
	"terms",
	"unskip",
	"version",
}

// Builtins returns the fixed command-name set, sorted.
func Builtins() []string {
	out := make([]string, len(builtins))
	copy(out, builtins)
	return out
}

// Resolve maps a verb (possibly abbreviated, possibly a custom term) to a
// canonical built-in command name. badTerm/goodTerm may be "" when no session
// or no custom terms exist.
func Resolve(verb, badTerm, goodTerm string) (string, error) {
	names := Builtins()
	if badTerm != "" && badTerm != models.DefaultBadTerm {
		names = append(names, badTerm)
	}
	if goodTerm != "" && goodTerm != models.DefaultGoodTerm {
		names = append(names, goodTerm)
	}
	sort.Strings(names)

	var matches []string
	for _, name := range names {
		if name == verb {
			matches = []string{name}
			break
		}
		if strings.HasPrefix(name, verb) {
			matches = append(matches, name)
		}
	}

	switch len(matches) {
	case 0:
		return "", errs.New(errs.CodeUnknownCommand, "unknown command %q", verb)
	case 1:
		return canonical(matches[0], badTerm, goodTerm), nil
	default:
		return "", errs.New(errs.CodeAmbiguousCommand,
			"%q is ambiguous: %s", verb, strings.Join(matches, ", "))
	}
}

// canonical folds custom term names back onto the built-in verbs.
func canonical(name, badTerm, goodTerm string) string {
	switch name {
	case badTerm:
		return models.DefaultBadTerm
	case goodTerm:
		return models.DefaultGoodTerm
	}
	return name
}

var termPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ValidateTerm checks a custom term name: lowercase word characters only, and
// no prefix collision (in either direction) with any built-in command name.
func ValidateTerm(name string) error {
	if !termPattern.MatchString(name) {
		return errs.New(errs.CodeInvalidTerm,
			"invalid term %q: terms must match %s", name, termPattern)
	}
	for _, b := range builtins {
		if strings.HasPrefix(b, name) || strings.HasPrefix(name, b) {
			return errs.New(errs.CodeInvalidTerm,
				"term %q collides with the %q command", name, b)
		}
	}
	return nil
}

// ValidateTerms checks a bad/good term pair. Either may be "" (built-in name
// kept).
func ValidateTerms(badTerm, goodTerm string) error {
	if badTerm != "" {
		if err := ValidateTerm(badTerm); err != nil {
			return err
		}
	}
	if goodTerm != "" {
		if err := ValidateTerm(goodTerm); err != nil {
			return err
		}
	}
	if badTerm != "" && badTerm == goodTerm {
		return errs.New(errs.CodeInvalidTerm,
			"term %q cannot name both bounds", badTerm)
	}
	return nil
}
