package runner

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/sb/internal/bisect"
	"github.com/joescharf/sb/internal/errs"
	"github.com/joescharf/sb/internal/models"
	"github.com/joescharf/sb/internal/output"
	"github.com/joescharf/sb/internal/session"
	"github.com/joescharf/sb/internal/svn/svntest"
)

func quietUI() *output.UI {
	return &output.UI{Out: io.Discard, ErrOut: io.Discard}
}

func newTestRunner(t *testing.T, revs ...models.Revision) (*Runner, *svntest.Oracle) {
	t.Helper()
	oracle := svntest.New(revs...)
	app := bisect.New(oracle, session.NewStore(t.TempDir()), quietUI())
	return New(app, quietUI(), 0), oracle
}

// exitWith makes the runner execute `sh -c "exit N"` where N is computed
// from the revision under test at the moment the command is built.
func exitWith(oracle *svntest.Oracle, code func(models.Revision) int) func(context.Context, string, ...string) *exec.Cmd {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		n := code(oracle.Current)
		return exec.CommandContext(ctx, "sh", "-c", fmt.Sprintf("exit %d", n))
	}
}

func TestRun_ConvergesOnFirstBad(t *testing.T) {
	r, oracle := newTestRunner(t, 100, 95, 90, 85, 80, 75, 70)
	_, err := r.App.Start(bisect.StartOptions{Bad: "100", Good: "70"})
	require.NoError(t, err)

	// The defect appeared in r90.
	r.Exec = exitWith(oracle, func(cur models.Revision) int {
		if cur >= 90 {
			return 1
		}
		return 0
	})

	require.NoError(t, r.Run(context.Background(), "true"))

	st, err := r.App.Status()
	require.NoError(t, err)
	require.NotNil(t, st.Plan)
	require.NotNil(t, st.Plan.FirstBad)
	assert.Equal(t, models.Revision(90), *st.Plan.FirstBad)
}

func TestRun_AllGoodBlamesBadBound(t *testing.T) {
	r, _ := newTestRunner(t, 100, 95, 90, 85, 80, 75, 70)
	_, err := r.App.Start(bisect.StartOptions{Bad: "100", Good: "70"})
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background(), "sh", "-c", "exit 0"))

	st, err := r.App.Status()
	require.NoError(t, err)
	require.NotNil(t, st.Plan.FirstBad)
	assert.Equal(t, models.Revision(100), *st.Plan.FirstBad)
}

func TestRun_SkipEverythingEndsWithSuspects(t *testing.T) {
	r, _ := newTestRunner(t, 100, 95, 90, 85, 80)
	_, err := r.App.Start(bisect.StartOptions{Bad: "100", Good: "80"})
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background(), "sh", "-c", "exit 125"))

	st, err := r.App.Status()
	require.NoError(t, err)
	require.NotNil(t, st.Plan)
	assert.True(t, st.Plan.Concluded)
	assert.Nil(t, st.Plan.FirstBad)
	assert.Equal(t, []models.Revision{100, 95, 90, 85}, st.Plan.Suspects)
}

func TestRun_AbortExitCode(t *testing.T) {
	r, _ := newTestRunner(t, 100, 95, 90, 85, 80, 75, 70)
	_, err := r.App.Start(bisect.StartOptions{Bad: "100", Good: "70"})
	require.NoError(t, err)

	err = r.Run(context.Background(), "sh", "-c", "exit 200")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeAutomationAbort))
}

func TestRun_MissingCommand(t *testing.T) {
	r, _ := newTestRunner(t, 100, 95, 90, 85)
	_, err := r.App.Start(bisect.StartOptions{Bad: "100", Good: "85"})
	require.NoError(t, err)

	err = r.Run(context.Background(), "/nonexistent/test-command")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeAutomationAbort))
}

func TestRun_RequiresBothBounds(t *testing.T) {
	r, _ := newTestRunner(t, 100, 95, 90)
	_, err := r.App.Start(bisect.StartOptions{Bad: "100"})
	require.NoError(t, err)

	err = r.Run(context.Background(), "sh", "-c", "exit 0")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeNoActiveSession))
}

func TestRun_NoSession(t *testing.T) {
	r, _ := newTestRunner(t, 100, 95)

	err := r.Run(context.Background(), "sh", "-c", "exit 0")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeNoActiveSession))
}

func TestRun_MaxStepsGuard(t *testing.T) {
	r, _ := newTestRunner(t, 100, 95, 90, 85, 80, 75, 70)
	r.MaxSteps = 1
	_, err := r.App.Start(bisect.StartOptions{Bad: "100", Good: "70"})
	require.NoError(t, err)

	err = r.Run(context.Background(), "sh", "-c", "exit 0")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeAutomationAbort))
	assert.Contains(t, err.Error(), "after 1 steps")
}

func TestRun_CancelledContext(t *testing.T) {
	r, _ := newTestRunner(t, 100, 95, 90, 85)
	_, err := r.App.Start(bisect.StartOptions{Bad: "100", Good: "85"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, r.Run(ctx, "sh", "-c", "exit 0"), context.Canceled)
}
