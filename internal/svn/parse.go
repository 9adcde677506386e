package svn

import (
	"strings"

	"github.com/joescharf/sb/internal/models"
)

const logSeparator = "----------------------------------------------------------------------"

// ParseLogRevisions extracts the revision numbers from svn log output, in the
// order svn printed them. It matches the "r<N> | author | date" header lines
// and ignores everything else, so it works for both quiet and full output.
func ParseLogRevisions(out string) []models.Revision {
	var revs []models.Revision
	for _, line := range strings.Split(out, "\n") {
		rev, ok := parseLogHeader(line)
		if !ok {
			continue
		}
		revs = append(revs, rev)
	}
	return revs
}

// parseLogHeader parses one "r95 | joe | 2026-01-02 ... " line.
func parseLogHeader(line string) (models.Revision, bool) {
	if !strings.HasPrefix(line, "r") || !strings.Contains(line, " | ") {
		return 0, false
	}
	field := strings.TrimSpace(strings.SplitN(line, "|", 2)[0])
	return models.ParseLiteral(field)
}

// ParseFirstLogLine returns the first non-blank line of the commit message in
// svn log output for a single revision. The message starts after the header
// line and its following blank line.
func ParseFirstLogLine(out string) string {
	inMessage := false
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, logSeparator) {
			inMessage = false
			continue
		}
		if _, ok := parseLogHeader(line); ok {
			inMessage = true
			continue
		}
		if inMessage {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
