// tools_init.go implements exambank_init, the one tool that works before a
// bank exists.

package mcp

import (
	"context"
	"log/slog"

	"github.com/jpl-au/exambank/internal/bank"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/mark3labs/mcp-go/mcp"
)

// initBank handles exambank_init tool calls.
func (h *handlers) initBank(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.svc != nil {
		return mcp.NewToolResultError("bank already initialised"), nil
	}

	local := getBool(req, "local", false)

	err := bank.Init(false, h.db, local, h.dir)

	log.Event("mcp:exambank_init", "init").Author(author).Detail("local", local).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := h.open(); err != nil {
		return mcp.NewToolResultError("init succeeded but failed to open bank: " + err.Error()), nil
	}

	slog.Info("bank initialised", "local", local)

	if local {
		return mcp.NewToolResultText("bank initialised (local - gitignored)"), nil
	}
	return mcp.NewToolResultText("bank initialised"), nil
}
