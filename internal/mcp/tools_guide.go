// tools_guide.go implements exambank_guide, which serves the embedded usage
// pages. It works without a bank.

package mcp

import (
	"context"

	"github.com/jpl-au/exambank/guide"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/mark3labs/mcp-go/mcp"
)

// getGuide handles exambank_guide tool calls.
func (h *handlers) getGuide(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic := getString(req, "topic", "")

	content, err := guide.Get(topic)

	log.Event("mcp:exambank_guide", "read").Author(author).Detail("topic", topic).Write(err)

	if err != nil {
		return jsonResult(map[string]any{
			"error":  err.Error(),
			"topics": guide.Topics(),
		})
	}
	return mcp.NewToolResultText(content), nil
}
