package svn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogRange_KeywordsWalkDown(t *testing.T) {
	// A keyword on a subtree checkout may name a repository revision that
	// never touched this path; the downward range finds the newest one
	// that did.
	assert.Equal(t, "HEAD:0", logRange("HEAD"))
	assert.Equal(t, "BASE:0", logRange("BASE"))
	assert.Equal(t, "PREV:0", logRange("PREV"))
	assert.Equal(t, "COMMITTED:0", logRange("COMMITTED"))
}

func TestLogRange_LiteralsStayExact(t *testing.T) {
	assert.Equal(t, "1542", logRange("1542"))
	assert.Equal(t, "7", logRange("7"))
}
