package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want Revision
		ok   bool
	}{
		{"1234", 1234, true},
		{"r1234", 1234, true},
		{"R7", 7, true},
		{"0", 0, true},
		{"-3", 0, false},
		{"r-3", 0, false},
		{"HEAD", 0, false},
		{"12a", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseLiteral(tt.in)
		assert.Equal(t, tt.ok, ok, "ParseLiteral(%q)", tt.in)
		if ok {
			assert.Equal(t, tt.want, got, "ParseLiteral(%q)", tt.in)
		}
	}
}

func TestValidToken(t *testing.T) {
	assert.True(t, ValidToken("1542"))
	assert.True(t, ValidToken("r1542"))
	assert.True(t, ValidToken("HEAD"))
	assert.True(t, ValidToken("prev"), "keywords are case-insensitive")
	assert.False(t, ValidToken("trunk"))
	assert.False(t, ValidToken("1542:1550"))
}

func TestSession_Terms(t *testing.T) {
	s := &Session{}
	assert.Equal(t, "bad", s.TermBad())
	assert.Equal(t, "good", s.TermGood())

	s.BadTerm, s.GoodTerm = "slow", "fast"
	assert.Equal(t, "slow", s.TermBad())
	assert.Equal(t, "fast", s.TermGood())
}

func TestSession_SortSkipped(t *testing.T) {
	s := &Session{Skipped: []Revision{80, 95, 90}}
	s.SortSkipped()
	assert.Equal(t, []Revision{95, 90, 80}, s.Skipped)

	assert.True(t, s.IsSkipped(90))
	assert.False(t, s.IsSkipped(85))
}
