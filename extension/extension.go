// Package extension provides the plugin architecture for exambank.
// Extensions group related commands and MCP tools and register themselves
// at init time, so a new feature never has to touch cmd/.
package extension

import (
	"github.com/spf13/cobra"
)

// Extension defines the contract for exambank extensions.
type Extension interface {
	// Name returns a unique identifier for this extension.
	Name() string

	// Commands returns CLI commands to register with the root command.
	Commands() []*cobra.Command

	// MCPTools returns MCP tools to register with the server.
	MCPTools() []MCPTool
}

// Initializable extensions receive the open bank before their commands run.
type Initializable interface {
	Extension
	Init(ctx Context) error
}

// Storeless lists top-level commands that must not open the bank first,
// either because they create it (init) or manage their own lifecycle
// (serve, import with --dry-run).
type Storeless interface {
	NoStoreCommands() []string
}
