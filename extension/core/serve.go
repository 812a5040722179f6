// serve.go implements the "exambank serve" command.
//
// Serve blocks handling MCP requests over stdio. It opens the bank itself,
// and starts without one so a client can call exambank_init.

package core

import (
	"github.com/jpl-au/exambank/cmd"
	"github.com/jpl-au/exambank/internal/mcp"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start MCP server",
		Long: `Start an MCP (Model Context Protocol) server over stdio for LLM integration.

Use --db to serve a specific bank:
  exambank serve --db term2    # serve exambank-term2.db`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	return mcp.Serve(cmd.DB(), cmd.Dir())
}
