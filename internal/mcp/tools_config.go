// tools_config.go implements the configuration tools.
//
// exambank_config_set writes the local file and reloads the running bank so
// new limits apply to the next write without restarting the server.

package mcp

import (
	"context"
	"fmt"

	"github.com/jpl-au/exambank/internal/config"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/mark3labs/mcp-go/mcp"
)

// configGet handles exambank_config_get tool calls.
func (h *handlers) configGet(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Event("mcp:exambank_config_get", "get").Author(author).Write(err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	key := getString(req, "key", "")
	if key == "" {
		log.Event("mcp:exambank_config_get", "list").Author(author).Write(nil)
		return jsonResult(cfg.All())
	}

	v, err := cfg.Get(key)

	log.Event("mcp:exambank_config_get", "get").Author(author).Detail("key", key).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]string{key: v})
}

// configSet handles exambank_config_set tool calls.
func (h *handlers) configSet(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, res := h.service(); res != nil {
		return res, nil
	}

	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError("key is required"), nil //nolint:nilerr
	}
	value, err := req.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError("value is required"), nil //nolint:nilerr
	}

	event := log.Event("mcp:exambank_config_set", "set").Author(author).Detail("key", key).Detail("value", value)

	cfg, err := config.LoadScope(config.ScopeLocal)
	if err == nil {
		err = cfg.Set(key, value)
	}
	if err == nil {
		err = cfg.Save()
	}
	event.Write(err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := h.svc.ReloadConfig(); err != nil {
		log.Event("mcp:exambank_config_set", "reload").Author(author).Write(err)
		return mcp.NewToolResultText(fmt.Sprintf("%s = %s (warning: reload failed, restart server to apply: %v)", key, value, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s = %s", key, value)), nil
}
