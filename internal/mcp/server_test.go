package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/sb/internal/bisect"
	"github.com/joescharf/sb/internal/models"
	"github.com/joescharf/sb/internal/output"
	"github.com/joescharf/sb/internal/session"
	"github.com/joescharf/sb/internal/svn/svntest"
)

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

// mockHistory implements store.Store for testing.
type mockHistory struct {
	archived []*models.ArchivedSession
	listErr  error
}

func (m *mockHistory) ArchiveSession(_ context.Context, s *models.ArchivedSession) error {
	m.archived = append(m.archived, s)
	return nil
}

func (m *mockHistory) GetSession(_ context.Context, id string) (*models.ArchivedSession, error) {
	for _, s := range m.archived {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("session not found: %s", id)
}

func (m *mockHistory) ListSessions(_ context.Context, wc string, limit int) ([]*models.ArchivedSession, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*models.ArchivedSession
	for _, s := range m.archived {
		if wc == "" || s.WorkingCopy == wc {
			out = append(out, s)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockHistory) Migrate(context.Context) error { return nil }
func (m *mockHistory) Close() error                  { return nil }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestServer(t *testing.T, revs ...models.Revision) (*Server, *svntest.Oracle, *mockHistory) {
	t.Helper()
	oracle := svntest.New(revs...)
	ui := &output.UI{Out: io.Discard, ErrOut: io.Discard}
	app := bisect.New(oracle, session.NewStore(t.TempDir()), ui)
	hist := &mockHistory{}
	app.Archive = hist

	srv := NewServer(app, hist, "test")
	require.NotNil(t, srv)
	return srv, oracle, hist
}

// callToolReq builds a mcpgo.CallToolRequest with the given name and arguments.
func callToolReq(name string, args map[string]any) mcpgo.CallToolRequest {
	return mcpgo.CallToolRequest{
		Params: mcpgo.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// resultText extracts the concatenated text from a CallToolResult.
func resultText(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	var b strings.Builder
	for _, c := range result.Content {
		tc, ok := c.(mcpgo.TextContent)
		if ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

// resultJSON parses the text result as JSON into the provided target.
func resultJSON(t *testing.T, result *mcpgo.CallToolResult, target any) {
	t.Helper()
	text := resultText(t, result)
	err := json.Unmarshal([]byte(text), target)
	require.NoError(t, err, "failed to parse result JSON: %s", text)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestNewServer(t *testing.T) {
	srv, _, _ := newTestServer(t, 100, 95)
	mcpSrv := srv.MCPServer()
	require.NotNil(t, mcpSrv, "MCPServer() should return non-nil")
}

func TestHandleStart_SeedsBoundsAndReportsNext(t *testing.T) {
	srv, oracle, _ := newTestServer(t, 100, 95, 90, 85, 80, 75, 70)

	result, err := srv.handleStart(context.Background(),
		callToolReq("sb_start", map[string]any{"bad": "100", "good": "70"}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var out map[string]any
	resultJSON(t, result, &out)
	assert.Equal(t, false, out["concluded"])
	assert.Equal(t, "r85", out["next"])
	assert.Equal(t, "r100", out["bad"])
	assert.Equal(t, "r70", out["good"])
	assert.Equal(t, models.Revision(85), oracle.Current)
}

func TestHandleStart_AlreadyActive(t *testing.T) {
	srv, _, _ := newTestServer(t, 100, 95)

	_, err := srv.handleStart(context.Background(), callToolReq("sb_start", nil))
	require.NoError(t, err)

	result, err := srv.handleStart(context.Background(), callToolReq("sb_start", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "already in progress")
}

func TestHandleMark_NarrowsAndConcludes(t *testing.T) {
	srv, _, _ := newTestServer(t, 91, 90, 80)

	_, err := srv.handleStart(context.Background(),
		callToolReq("sb_start", map[string]any{"bad": "91"}))
	require.NoError(t, err)

	_, handler := srv.markTool("sb_good", "", srv.app.MarkGood)
	result, err := handler(context.Background(),
		callToolReq("sb_good", map[string]any{"revision": "90"}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var out map[string]any
	resultJSON(t, result, &out)
	assert.Equal(t, true, out["concluded"])
	assert.Equal(t, "r91", out["first_bad"])
}

func TestHandleSkip_AndUndo(t *testing.T) {
	srv, _, _ := newTestServer(t, 100, 95, 90, 85, 80, 75, 70)

	_, err := srv.handleStart(context.Background(),
		callToolReq("sb_start", map[string]any{"bad": "100", "good": "70"}))
	require.NoError(t, err)

	result, err := srv.handleSkip(context.Background(),
		callToolReq("sb_skip", map[string]any{"revisions": "90 75"}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var out map[string]any
	resultJSON(t, result, &out)
	assert.ElementsMatch(t, []any{"r90", "r75"}, out["skipped"])

	result, err = srv.handleSkip(context.Background(),
		callToolReq("sb_skip", map[string]any{"revisions": "90 75", "undo": true}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	out = nil
	resultJSON(t, result, &out)
	assert.Nil(t, out["skipped"])
}

func TestHandleStatus_CustomTerms(t *testing.T) {
	srv, _, _ := newTestServer(t, 100, 95, 90, 85, 80, 75, 70)

	_, err := srv.handleStart(context.Background(),
		callToolReq("sb_start", map[string]any{
			"bad": "100", "good": "70", "term_bad": "slow", "term_good": "fast",
		}))
	require.NoError(t, err)

	result, err := srv.handleStatus(context.Background(), callToolReq("sb_status", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out map[string]any
	resultJSON(t, result, &out)
	assert.Equal(t, "slow", out["term_bad"])
	assert.Equal(t, "r100", out["slow"])
	assert.Equal(t, "r70", out["fast"])
}

func TestHandleStatus_NoSession(t *testing.T) {
	srv, _, _ := newTestServer(t, 100)

	result, err := srv.handleStatus(context.Background(), callToolReq("sb_status", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "no bisect session")
}

func TestHandleReset_Archives(t *testing.T) {
	srv, oracle, hist := newTestServer(t, 100, 95, 90, 85, 80, 75, 70)

	_, err := srv.handleStart(context.Background(),
		callToolReq("sb_start", map[string]any{"bad": "100", "good": "70"}))
	require.NoError(t, err)

	result, err := srv.handleReset(context.Background(), callToolReq("sb_reset", nil))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	assert.Equal(t, models.Revision(100), oracle.Current)
	require.Len(t, hist.archived, 1)
	assert.Equal(t, models.OutcomeAbandoned, hist.archived[0].Outcome)
}

func TestHandleHistory(t *testing.T) {
	srv, _, hist := newTestServer(t, 100)
	culprit := models.Revision(42)
	hist.archived = append(hist.archived, &models.ArchivedSession{
		ID:          "01TEST",
		WorkingCopy: "/src/trunk",
		Culprit:     &culprit,
		Outcome:     models.OutcomeConcluded,
		StartedAt:   time.Now().Add(-time.Hour),
		EndedAt:     time.Now(),
	})

	result, err := srv.handleHistory(context.Background(), callToolReq("sb_history", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out []map[string]any
	resultJSON(t, result, &out)
	require.Len(t, out, 1)
	assert.Equal(t, "concluded", out[0]["outcome"])
	assert.Equal(t, "r42", out[0]["culprit"])
}

func TestHandleHistory_NoDatabase(t *testing.T) {
	srv, _, _ := newTestServer(t, 100)
	srv.history = nil

	result, err := srv.handleHistory(context.Background(), callToolReq("sb_history", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
