package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/sb/internal/models"
	"github.com/joescharf/sb/internal/session"
)

// saveSessionWithTerms plants a session record rooted at the given absolute
// working copy path, the way start persists it.
func saveSessionWithTerms(t *testing.T, wc, badTerm, goodTerm string) {
	t.Helper()
	st := session.NewStore(wc)
	require.NoError(t, st.Save(&models.Session{
		ID:          models.NewULID(),
		WorkingCopy: wc,
		BadTerm:     badTerm,
		GoodTerm:    goodTerm,
	}))
}

func TestSessionTerms_DefaultWorkingCopy(t *testing.T) {
	t.Chdir(t.TempDir())
	wd, err := os.Getwd()
	require.NoError(t, err)
	saveSessionWithTerms(t, wd, "slow", "fast")

	// The session stores an absolute path; the default "." must still
	// reach it so custom-term verbs dispatch from inside the working copy.
	bad, good := sessionTerms([]string{"slow"})
	assert.Equal(t, "slow", bad)
	assert.Equal(t, "fast", good)
}

func TestSessionTerms_RelativeWCFlag(t *testing.T) {
	t.Chdir(t.TempDir())
	wd, err := os.Getwd()
	require.NoError(t, err)
	wc := filepath.Join(wd, "checkout")
	require.NoError(t, os.Mkdir(wc, 0755))
	saveSessionWithTerms(t, wc, "broken", "works")

	bad, good := sessionTerms([]string{"--wc", "checkout", "broken"})
	assert.Equal(t, "broken", bad)
	assert.Equal(t, "works", good)

	bad, good = sessionTerms([]string{"--wc=checkout", "works"})
	assert.Equal(t, "broken", bad)
	assert.Equal(t, "works", good)
}

func TestSessionTerms_NoSession(t *testing.T) {
	t.Chdir(t.TempDir())

	bad, good := sessionTerms([]string{"status"})
	assert.Empty(t, bad)
	assert.Empty(t, good)
}

func TestHistoryLimitShorthand(t *testing.T) {
	f := historyCmd.Flags().Lookup("limit")
	require.NotNil(t, f)
	assert.Equal(t, "n", f.Shorthand)
}
