// tools_answers.go implements the scanned answer tools. Answers have a
// composite key (instance, student, scan) and no id, so they get their own
// tools instead of going through exambank_get and friends.

package mcp

import (
	"context"
	"fmt"

	"github.com/jpl-au/exambank/internal/log"
	"github.com/jpl-au/exambank/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// listAnswers handles exambank_answers_list tool calls.
func (h *handlers) listAnswers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.service()
	if res != nil {
		return res, nil
	}
	instanceID, err := req.RequireString("instance_id")
	if err != nil {
		return mcp.NewToolResultError("instance_id is required"), nil //nolint:nilerr
	}
	studentID := getString(req, "student_id", "")
	scan, err := getInt(req, "scan")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	answers, err := svc.ExamInstanceAnswers(ctx, instanceID, studentID, scan)

	log.Event("mcp:exambank_answers_list", "list").Author(author).Kind(string(store.KindAnswer)).ID(instanceID).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(answers)
}

// putAnswer handles exambank_answers_put tool calls.
func (h *handlers) putAnswer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.service()
	if res != nil {
		return res, nil
	}
	instanceID, err := req.RequireString("instance_id")
	if err != nil {
		return mcp.NewToolResultError("instance_id is required"), nil //nolint:nilerr
	}
	studentID, err := req.RequireString("student_id")
	if err != nil {
		return mcp.NewToolResultError("student_id is required"), nil //nolint:nilerr
	}
	scan, err := getInt(req, "scan")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if scan == nil {
		return mcp.NewToolResultError("scan is required"), nil
	}
	var answer store.Object
	decode, err := getDecoder(req, "answer")
	if err == nil {
		err = decode(&answer)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	key := store.AnswerKey(instanceID, studentID, *scan)
	a, err := svc.InsertExamInstanceAnswer(ctx, store.ExamInstanceAnswer{
		ExamInstanceID: instanceID,
		StudentID:      studentID,
		ScanNumber:     *scan,
		AnswerObject:   answer,
	})

	log.Event("mcp:exambank_answers_put", "insert").Author(author).Kind(string(store.KindAnswer)).ID(key).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(a)
}

// deleteAnswers handles exambank_answers_delete tool calls.
func (h *handlers) deleteAnswers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	svc, res := h.service()
	if res != nil {
		return res, nil
	}
	instanceID, err := req.RequireString("instance_id")
	if err != nil {
		return mcp.NewToolResultError("instance_id is required"), nil //nolint:nilerr
	}
	studentID := getString(req, "student_id", "")
	scan, err := getInt(req, "scan")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ok, err := svc.DeleteExamInstanceAnswers(ctx, instanceID, studentID, scan)

	log.Event("mcp:exambank_answers_delete", "delete").Author(author).Kind(string(store.KindAnswer)).ID(instanceID).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no answers for instance %s: %v", instanceID, store.ErrNotFound)), nil
	}
	return mcp.NewToolResultText("deleted answers for instance " + instanceID), nil
}
