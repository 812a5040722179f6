// tools_tags.go implements the tag tools on top of internal/tag, which the
// CLI shares. Tags are addressed by text; assigning an unknown tag creates it.

package mcp

import (
	"context"
	"io"

	"github.com/jpl-au/exambank/internal/log"
	"github.com/jpl-au/exambank/internal/store"
	"github.com/jpl-au/exambank/internal/tag"
	"github.com/mark3labs/mcp-go/mcp"
)

// tagArgs reads the kind, id and tag parameters shared by assign and unassign.
func tagArgs(req mcp.CallToolRequest) (store.Kind, string, string, *mcp.CallToolResult) {
	k, res := getKind(req)
	if res != nil {
		return "", "", "", res
	}
	id, err := req.RequireString("id")
	if err != nil {
		return "", "", "", mcp.NewToolResultError("id is required")
	}
	text, err := req.RequireString("tag")
	if err != nil {
		return "", "", "", mcp.NewToolResultError("tag is required")
	}
	return k, id, text, nil
}

// assignTag handles exambank_tag_assign tool calls.
func (h *handlers) assignTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.service()
	if res != nil {
		return res, nil
	}
	k, id, text, res := tagArgs(req)
	if res != nil {
		return res, nil
	}

	result, err := tag.Assign(ctx, io.Discard, svc, k, id, text)

	log.Event("mcp:exambank_tag_assign", "assign").Author(author).Kind(string(k)).ID(id).Detail("tag", text).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

// unassignTag handles exambank_tag_unassign tool calls.
func (h *handlers) unassignTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.service()
	if res != nil {
		return res, nil
	}
	k, id, text, res := tagArgs(req)
	if res != nil {
		return res, nil
	}

	result, err := tag.Unassign(ctx, io.Discard, svc, k, id, text)

	log.Event("mcp:exambank_tag_unassign", "unassign").Author(author).Kind(string(k)).ID(id).Detail("tag", text).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

// listTags handles exambank_tags_list tool calls.
func (h *handlers) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.service()
	if res != nil {
		return res, nil
	}

	f := &store.TagFilter{
		IDs:  getStrings(req, "ids"),
		Text: getStrings(req, "match"),
	}
	if s := getString(req, "kind", ""); s != "" {
		k, err := store.ParseKind(s)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		f.Kind = k
	}

	result, err := tag.List(ctx, io.Discard, svc, f)

	log.Event("mcp:exambank_tags_list", "list").Author(author).Kind(string(f.Kind)).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result.Tags)
}
