// Package core provides the core extension for exambank.
// It registers commands: init, config, serve, db, stats, checkpoint, log,
// guide, version.
package core

import (
	"github.com/jpl-au/exambank/extension"
	"github.com/jpl-au/exambank/internal/service"
	"github.com/spf13/cobra"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the core extension. svc is nil for the commands
// listed in NoStoreCommands.
type Extension struct {
	svc service.Service
}

var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
	_ extension.Storeless     = (*Extension)(nil)
)

// Name returns "core".
func (e *Extension) Name() string { return "core" }

// Init receives the open bank for stats, checkpoint and log.
func (e *Extension) Init(ctx extension.Context) error {
	e.svc = ctx.Service()
	return nil
}

// Commands returns the bank management commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		newInitCmd(),
		newConfigCmd(),
		newServeCmd(),
		newDBCmd(),
		e.newStatsCmd(),
		e.newCheckpointCmd(),
		e.newLogCmd(),
		newGuideCmd(),
		newVersionCmd(),
	}
}

// MCPTools returns nil; core operations are served by internal/mcp.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}

// NoStoreCommands returns commands that manage their own service lifecycle.
// serve: the MCP server opens the bank itself and can start without one.
// db: manages .gitignore entries without opening a database.
// guide, version: embedded content only.
func (e *Extension) NoStoreCommands() []string {
	return []string{"serve", "db", "guide", "version"}
}
