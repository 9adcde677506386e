package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/sb/internal/errs"
	"github.com/joescharf/sb/internal/models"
	"github.com/joescharf/sb/internal/svn/svntest"
)

func TestRev_Literal(t *testing.T) {
	o := svntest.New(100, 95, 90, 85)

	rev, err := Rev(o, "/wc", "95")
	require.NoError(t, err)
	assert.Equal(t, models.Revision(95), rev)
}

func TestRev_Keywords(t *testing.T) {
	o := svntest.New(100, 95, 90, 85)
	o.Current = 90

	tests := []struct {
		token string
		want  models.Revision
	}{
		{"HEAD", 100},
		{"head", 100},
		{"BASE", 90},
		{"COMMITTED", 90},
		{"PREV", 85},
	}
	for _, tt := range tests {
		rev, err := Rev(o, "/wc", tt.token)
		require.NoError(t, err, tt.token)
		assert.Equal(t, tt.want, rev, tt.token)
	}
}

func TestRev_NotInHistory(t *testing.T) {
	// r92 exists between history entries but never touched this line.
	o := svntest.New(100, 95, 90)

	_, err := Rev(o, "/wc", "92")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeUnresolvableRevision))
}

func TestRev_Garbage(t *testing.T) {
	o := svntest.New(100)

	for _, token := range []string{"", "abc", "-5", "1.5", "HEAD~1"} {
		_, err := Rev(o, "/wc", token)
		assert.True(t, errs.Is(err, errs.CodeUnresolvableRevision), "token %q", token)
	}
}

func TestRange_Single(t *testing.T) {
	o := svntest.New(100, 95, 90)

	low, high, err := Range(o, "/wc", "95")
	require.NoError(t, err)
	assert.Equal(t, models.Revision(95), low)
	assert.Equal(t, models.Revision(95), high)
}

func TestRange_NormalizesOrder(t *testing.T) {
	o := svntest.New(100, 95, 90, 85)

	low, high, err := Range(o, "/wc", "95:85")
	require.NoError(t, err)
	assert.Equal(t, models.Revision(85), low)
	assert.Equal(t, models.Revision(95), high)

	low, high, err = Range(o, "/wc", "85:95")
	require.NoError(t, err)
	assert.Equal(t, models.Revision(85), low)
	assert.Equal(t, models.Revision(95), high)
}

func TestRange_BadEndpoint(t *testing.T) {
	o := svntest.New(100, 95, 90)

	_, _, err := Range(o, "/wc", "95:nope")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeUnresolvableRevision))
}
