// tools_entities.go implements the generic entity tools. Every kind goes
// through the same five handlers; internal/entity picks the store method.

package mcp

import (
	"context"
	"fmt"

	"github.com/jpl-au/exambank/internal/entity"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/jpl-au/exambank/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// listEntities handles exambank_list tool calls.
func (h *handlers) listEntities(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.service()
	if res != nil {
		return res, nil
	}
	k, res := getKind(req)
	if res != nil {
		return res, nil
	}
	decode, err := getDecoder(req, "filter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	v, err := entity.List(ctx, svc, k, decode)

	log.Event("mcp:exambank_list", "list").Author(author).Kind(string(k)).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(v)
}

// getEntity handles exambank_get tool calls.
func (h *handlers) getEntity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.service()
	if res != nil {
		return res, nil
	}
	k, res := getKind(req)
	if res != nil {
		return res, nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil //nolint:nilerr
	}

	v, err := entity.Get(ctx, svc, k, id)

	log.Event("mcp:exambank_get", "read").Author(author).Kind(string(k)).ID(id).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(v)
}

// insertEntity handles exambank_insert tool calls.
func (h *handlers) insertEntity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.service()
	if res != nil {
		return res, nil
	}
	k, res := getKind(req)
	if res != nil {
		return res, nil
	}
	decode, err := getDecoder(req, "data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	v, err := entity.Insert(ctx, svc, k, decode)

	log.Event("mcp:exambank_insert", "insert").Author(author).Kind(string(k)).ID(entity.ID(v)).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(v)
}

// updateEntity handles exambank_update tool calls.
func (h *handlers) updateEntity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.service()
	if res != nil {
		return res, nil
	}
	k, res := getKind(req)
	if res != nil {
		return res, nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil //nolint:nilerr
	}
	decode, err := getDecoder(req, "data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	replace := getBool(req, "replace", false)

	_, after, err := entity.Update(ctx, svc, k, id, decode, replace)

	log.Event("mcp:exambank_update", "update").Author(author).Kind(string(k)).ID(id).Detail("replace", replace).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(after)
}

// deleteEntity handles exambank_delete tool calls.
func (h *handlers) deleteEntity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.service()
	if res != nil {
		return res, nil
	}
	k, res := getKind(req)
	if res != nil {
		return res, nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil //nolint:nilerr
	}

	err = entity.Delete(ctx, svc, k, id)

	log.Event("mcp:exambank_delete", "delete").Author(author).Kind(string(k)).ID(id).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted %s %s", k, id)), nil
}

// listInstances handles exambank_instances tool calls.
func (h *handlers) listInstances(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.service()
	if res != nil {
		return res, nil
	}
	examID, err := req.RequireString("exam_id")
	if err != nil {
		return mcp.NewToolResultError("exam_id is required"), nil //nolint:nilerr
	}

	insts, err := svc.ExamInstances(ctx, examID)

	log.Event("mcp:exambank_instances", "list").Author(author).Kind(string(store.KindExam)).ID(examID).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(insts)
}
