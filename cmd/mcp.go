package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/sb/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets an MCP client drive a bisect session with the same operations
the CLI offers. Example client configuration:

  {
    "mcpServers": {
      "sb": { "command": "sb", "args": ["mcp", "--wc", "/path/to/wc"] }
    }
  }

Available tools: sb_status, sb_start, sb_bad, sb_good, sb_skip, sb_reset,
sb_history`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpRun(cmd)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func mcpRun(cmd *cobra.Command) error {
	app, err := getApp()
	if err != nil {
		return err
	}
	// Messages the engine would print go to stderr; stdout carries the
	// protocol.
	app.UI.Out = app.UI.ErrOut

	s, err := getStore()
	if err != nil {
		ui.Warning("history database unavailable: %v", err)
		s = nil
	} else {
		app.Archive = s
	}

	srv := mcp.NewServer(app, s, buildVersion)
	return srv.ServeStdio(cmd.Context())
}
