// Package mcp exposes the bisect session as MCP tools so an agent can drive
// a session the same way a human does at the command line.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/sb/internal/bisect"
	"github.com/joescharf/sb/internal/models"
	"github.com/joescharf/sb/internal/store"
)

// Server wraps the bisect engine and exposes it as MCP tools.
type Server struct {
	app     *bisect.App
	history store.Store // may be nil
	version string
}

// NewServer creates the MCP server wrapper. history may be nil when no
// archive database is configured.
func NewServer(app *bisect.App, history store.Store, version string) *Server {
	return &Server{app: app, history: history, version: version}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("sb", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.statusTool())
	srv.AddTool(s.startTool())
	srv.AddTool(s.markTool("sb_bad", "Mark a revision as bad (or whatever the session's bad term is). Defaults to the revision currently checked out.", s.app.MarkBad))
	srv.AddTool(s.markTool("sb_good", "Mark a revision as good (or whatever the session's good term is). Defaults to the revision currently checked out.", s.app.MarkGood))
	srv.AddTool(s.skipTool())
	srv.AddTool(s.resetTool())
	srv.AddTool(s.historyTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// sb_status
func (s *Server) statusTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sb_status",
		mcp.WithDescription("Describe the active bisect session: bounds, skipped revisions, the revision under test, and how many steps remain. Read-only."),
	)
	return tool, s.handleStatus
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.app.Status()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return planResult(st.Session, st.Plan)
}

// sb_start
func (s *Server) startTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sb_start",
		mcp.WithDescription("Start a new bisect session. Optionally seed the bad and good bounds; narrowing begins as soon as both are known."),
		mcp.WithString("bad", mcp.Description("Known-bad revision (number or HEAD/BASE/PREV/COMMITTED)")),
		mcp.WithString("good", mcp.Description("Known-good revision")),
		mcp.WithString("term_bad", mcp.Description("Alternative name for the bad state, e.g. slow")),
		mcp.WithString("term_good", mcp.Description("Alternative name for the good state, e.g. fast")),
	)
	return tool, s.handleStart
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := bisect.StartOptions{
		Bad:      request.GetString("bad", ""),
		Good:     request.GetString("good", ""),
		TermBad:  request.GetString("term_bad", ""),
		TermGood: request.GetString("term_good", ""),
	}
	p, err := s.app.Start(opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, err := s.app.Store.Load()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return planResult(sess, p)
}

// sb_bad / sb_good share a handler shape.
func (s *Server) markTool(name, desc string, apply func(string) (*bisect.Plan, error)) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool(name,
		mcp.WithDescription(desc),
		mcp.WithString("revision", mcp.Description("Revision to mark; omit for the revision currently checked out")),
	)
	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p, err := apply(request.GetString("revision", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		sess, err := s.app.Store.Load()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return planResult(sess, p)
	}
	return tool, handler
}

// sb_skip
func (s *Server) skipTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sb_skip",
		mcp.WithDescription("Skip revisions that cannot be tested (broken build, unrelated failure). Accepts single revisions and N:M ranges, space-separated."),
		mcp.WithString("revisions", mcp.Description("Revisions or ranges to skip; omit for the revision currently checked out")),
		mcp.WithBoolean("undo", mcp.Description("Un-skip instead, returning the revisions to the candidate set")),
	)
	return tool, s.handleSkip
}

func (s *Server) handleSkip(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := strings.Fields(request.GetString("revisions", ""))
	undo := request.GetBool("undo", false)

	var p *bisect.Plan
	var err error
	if undo {
		p, err = s.app.Unskip(args)
	} else {
		p, err = s.app.Skip(args)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, err := s.app.Store.Load()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return planResult(sess, p)
}

// sb_reset
func (s *Server) resetTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sb_reset",
		mcp.WithDescription("End the bisect session and restore the working copy to the revision it was at before bisecting started."),
		mcp.WithString("revision", mcp.Description("Update to this revision instead of the original one")),
	)
	return tool, s.handleReset
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.app.Reset(request.GetString("revision", ""), false); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(`{"reset":true}`), nil
}

// sb_history
func (s *Server) historyTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sb_history",
		mcp.WithDescription("List archived bisect sessions from the history database, newest first. Returns a JSON array with outcome, bounds, and the culprit revision where one was found."),
		mcp.WithString("working_copy", mcp.Description("Filter by working copy path")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of sessions to return")),
	)
	return tool, s.handleHistory
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.history == nil {
		return mcp.NewToolResultError("no history database configured"), nil
	}

	wc := request.GetString("working_copy", "")
	limit := request.GetInt("limit", 0)

	sessions, err := s.history.ListSessions(ctx, wc, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list sessions: %v", err)), nil
	}

	type sessionOut struct {
		ID           string `json:"id"`
		WorkingCopy  string `json:"working_copy"`
		Outcome      string `json:"outcome"`
		Bad          string `json:"bad,omitempty"`
		Good         string `json:"good,omitempty"`
		Culprit      string `json:"culprit,omitempty"`
		SuspectCount int    `json:"suspect_count,omitempty"`
		SkipCount    int    `json:"skip_count,omitempty"`
		StartedAt    string `json:"started_at"`
		EndedAt      string `json:"ended_at"`
	}

	out := make([]sessionOut, len(sessions))
	for i, a := range sessions {
		out[i] = sessionOut{
			ID:           a.ID,
			WorkingCopy:  a.WorkingCopy,
			Outcome:      string(a.Outcome),
			SuspectCount: a.SuspectCount,
			SkipCount:    a.SkipCount,
			StartedAt:    a.StartedAt.Format(time.RFC3339),
			EndedAt:      a.EndedAt.Format(time.RFC3339),
		}
		if a.Bad != nil {
			out[i].Bad = a.Bad.String()
		}
		if a.Good != nil {
			out[i].Good = a.Good.String()
		}
		if a.Culprit != nil {
			out[i].Culprit = a.Culprit.String()
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal sessions: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// planResult renders the session and (optionally) the current narrowing
// state as the tool result every mutating tool returns.
func planResult(sess *models.Session, p *bisect.Plan) (*mcp.CallToolResult, error) {
	result := map[string]any{
		"working_copy": sess.WorkingCopy,
		"term_bad":     sess.TermBad(),
		"term_good":    sess.TermGood(),
	}
	if sess.Bad != nil {
		result[sess.TermBad()] = sess.Bad.String()
	}
	if sess.Good != nil {
		result[sess.TermGood()] = sess.Good.String()
	}
	if len(sess.Skipped) > 0 {
		skipped := make([]string, len(sess.Skipped))
		for i, r := range sess.Skipped {
			skipped[i] = r.String()
		}
		result["skipped"] = skipped
	}

	if p != nil {
		switch {
		case p.FirstBad != nil:
			result["concluded"] = true
			result["first_"+sess.TermBad()] = p.FirstBad.String()
		case p.Suspects != nil:
			result["concluded"] = true
			suspects := make([]string, len(p.Suspects))
			for i, r := range p.Suspects {
				suspects[i] = r.String()
			}
			result["suspects"] = suspects
		default:
			result["concluded"] = false
			result["next"] = p.Next.String()
			result["remaining"] = p.Remaining
			result["steps_left"] = p.StepsLeft
		}
	}

	data, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
