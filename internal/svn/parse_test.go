package svn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joescharf/sb/internal/models"
)

const quietLog = `------------------------------------------------------------------------
r100 | joe | 2026-01-05 10:03:11 -0700 (Mon, 05 Jan 2026)
------------------------------------------------------------------------
r95 | joe | 2026-01-04 09:12:45 -0700 (Sun, 04 Jan 2026)
------------------------------------------------------------------------
r90 | sam | 2026-01-02 16:40:02 -0700 (Fri, 02 Jan 2026)
------------------------------------------------------------------------`

const fullLog = `------------------------------------------------------------------------
r95 | joe | 2026-01-04 09:12:45 -0700 (Sun, 04 Jan 2026) | 3 lines

Fix frobnicator overflow on 32-bit builds

The counter wrapped after 2^31 frobs.
------------------------------------------------------------------------`

func TestParseLogRevisions_Quiet(t *testing.T) {
	revs := ParseLogRevisions(quietLog)
	assert.Equal(t, []models.Revision{100, 95, 90}, revs)
}

func TestParseLogRevisions_Full(t *testing.T) {
	revs := ParseLogRevisions(fullLog)
	assert.Equal(t, []models.Revision{95}, revs)
}

func TestParseLogRevisions_Empty(t *testing.T) {
	// A revision outside the working copy's history yields only separators.
	assert.Nil(t, ParseLogRevisions("------------------------------------------------------------------------"))
	assert.Nil(t, ParseLogRevisions(""))
}

func TestParseLogRevisions_IgnoresMessageLines(t *testing.T) {
	// Message lines that happen to start with "r" must not parse as headers.
	log := `------------------------------------------------------------------------
r42 | joe | 2026-01-01 08:00:00 -0700 (Thu, 01 Jan 2026) | 1 line

r41 was wrong | revert it
------------------------------------------------------------------------`
	assert.Equal(t, []models.Revision{42}, ParseLogRevisions(log))
}

func TestParseFirstLogLine(t *testing.T) {
	assert.Equal(t, "Fix frobnicator overflow on 32-bit builds", ParseFirstLogLine(fullLog))
}

func TestParseFirstLogLine_EmptyMessage(t *testing.T) {
	log := `------------------------------------------------------------------------
r7 | joe | 2026-01-01 08:00:00 -0700 (Thu, 01 Jan 2026) | 0 lines

------------------------------------------------------------------------`
	assert.Equal(t, "", ParseFirstLogLine(log))
}
