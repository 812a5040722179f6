// Package mcp implements the Model Context Protocol server, exposing the
// exam bank to LLMs. Clients can list, read, insert, update and delete every
// entity kind, record scanned answers and manage tags.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/jpl-au/exambank/extension"
	"github.com/jpl-au/exambank/internal/bank"
	"github.com/jpl-au/exambank/internal/config"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/jpl-au/exambank/internal/repo"
	"github.com/jpl-au/exambank/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is advertised to clients for capability negotiation.
const Version = "1.0.0"

// ErrNotInitialised is returned by tools when no bank exists yet.
// The LLM should call exambank_init to create one.
const ErrNotInitialised = "bank not initialised - call exambank_init first"

// author is recorded in the audit log for every tool call.
const author = "mcp"

// Serve starts the MCP server over stdio.
//
// The server starts even if no bank exists, so that a client can call
// exambank_init instead of failing with an opaque error. Tools that need the
// bank return ErrNotInitialised until then.
func Serve(db, dir string) error {
	// stdout carries JSON-RPC
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	h := &handlers{db: db, dir: dir}
	err := h.open()
	if err != nil && !errors.Is(err, repo.ErrNotInitialised) {
		slog.Error("failed to open bank", "error", err)
		return err
	}
	if err == nil {
		defer h.svc.Close()
	} else {
		slog.Info("exambank not initialised, starting in uninitialised mode - call exambank_init to create a bank")
	}

	s := server.NewMCPServer(
		"exambank",
		Version,
		server.WithResourceCapabilities(true, false),
		server.WithToolCapabilities(true),
	)

	registerResources(s, h)
	registerTools(s, h)
	registerExtensionTools(s, h)

	slog.Info("exambank MCP server ready", "version", Version, "transport", "stdio")

	err = server.ServeStdio(s)
	if errors.Is(err, context.Canceled) {
		slog.Info("server stopped")
		return nil
	}
	return err
}

// handlers serves tool and resource requests. svc and extCtx are nil until
// a bank exists.
type handlers struct {
	db  string
	dir string

	svc    *bank.Service
	extCtx extension.Context
}

// open opens the bank and hands it to extensions.
func (h *handlers) open() error {
	svc, err := bank.New(h.db, h.dir)
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		svc.Close()
		return err
	}
	log.SetProject(svc.Dir())

	extCtx := extension.NewContext(svc, svc.DB(), cfg)
	svc.SetExtensionContext(extCtx)
	for _, ext := range extension.All() {
		if init, ok := ext.(extension.Initializable); ok {
			if err := init.Init(extCtx); err != nil {
				svc.Close()
				return err
			}
		}
	}
	h.svc = svc
	h.extCtx = extCtx
	return nil
}

// service returns the open bank, or an error result if there is none.
func (h *handlers) service() (service.Service, *mcp.CallToolResult) {
	if h.svc == nil {
		return nil, mcp.NewToolResultError(ErrNotInitialised)
	}
	return h.svc, nil
}

func registerResources(s *server.MCPServer, h *handlers) {
	s.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"exambank://{kind}/{id}",
			"Entity",
			mcp.WithTemplateDescription("Read a subject, question, exam, student, examInstance or tag by id as JSON"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		h.readEntity,
	)
}

const kindDescription = "Entity kind: subject, question, exam, student, examInstance or tag"

// registerTools exposes bank operations as MCP tools.
func registerTools(s *server.MCPServer, h *handlers) {
	// Works without a bank
	s.AddTool(
		mcp.NewTool("exambank_init",
			mcp.WithDescription("Initialise a new exam bank. Call this first if other tools return 'bank not initialised'."),
			mcp.WithBoolean("local", mcp.Description("If true, the database is gitignored (not committed to version control)")),
		),
		h.initBank,
	)

	s.AddTool(
		mcp.NewTool("exambank_guide",
			mcp.WithDescription("Get usage guidance for exambank. Without a topic, returns the main guide."),
			mcp.WithString("topic", mcp.Description("Guide topic: bundle or mcp")),
		),
		h.getGuide,
	)

	s.AddTool(
		mcp.NewTool("exambank_list",
			mcp.WithDescription("List entities of one kind. Each filter honours a single key: "+
				"subjects by subjectIds or tags; questions by questionIds, examIds, tags or subjectIds; "+
				"exams by subjectIds, examIds or tags; students by studentIds, externalIds or tags; "+
				"tags by kind and ids, or text. Tag patterns match as case-insensitive substrings."),
			mcp.WithString("kind", mcp.Required(), mcp.Description(kindDescription)),
			mcp.WithObject("filter", mcp.Description("Filter object; omit to list everything")),
		),
		h.listEntities,
	)

	s.AddTool(
		mcp.NewTool("exambank_get",
			mcp.WithDescription("Get one entity by id"),
			mcp.WithString("kind", mcp.Required(), mcp.Description(kindDescription)),
			mcp.WithString("id", mcp.Required(), mcp.Description("Entity id")),
		),
		h.getEntity,
	)

	s.AddTool(
		mcp.NewTool("exambank_insert",
			mcp.WithDescription("Insert an entity and return it with its new id. Associations (questionIds, subjectIds, studentIds, tags) are linked in the same transaction; an unknown id fails the whole insert."),
			mcp.WithString("kind", mcp.Required(), mcp.Description(kindDescription)),
			mcp.WithObject("data", mcp.Required(), mcp.Description("Entity fields")),
		),
		h.insertEntity,
	)

	s.AddTool(
		mcp.NewTool("exambank_update",
			mcp.WithDescription("Update an entity. Absent fields are kept. JSON objects are merged key by key unless replace is set."),
			mcp.WithString("kind", mcp.Required(), mcp.Description(kindDescription)),
			mcp.WithString("id", mcp.Required(), mcp.Description("Entity id")),
			mcp.WithObject("data", mcp.Required(), mcp.Description("Fields to change")),
			mcp.WithBoolean("replace", mcp.Description("Replace JSON objects and association lists instead of merging")),
		),
		h.updateEntity,
	)

	s.AddTool(
		mcp.NewTool("exambank_delete",
			mcp.WithDescription("Delete an entity and everything that depends on it"),
			mcp.WithString("kind", mcp.Required(), mcp.Description(kindDescription)),
			mcp.WithString("id", mcp.Required(), mcp.Description("Entity id")),
		),
		h.deleteEntity,
	)

	s.AddTool(
		mcp.NewTool("exambank_instances",
			mcp.WithDescription("List the generated instances of an exam"),
			mcp.WithString("exam_id", mcp.Required(), mcp.Description("Exam id")),
		),
		h.listInstances,
	)

	s.AddTool(
		mcp.NewTool("exambank_answers_list",
			mcp.WithDescription("List scanned answers for an exam instance"),
			mcp.WithString("instance_id", mcp.Required(), mcp.Description("Exam instance id")),
			mcp.WithString("student_id", mcp.Description("Limit to one student")),
			mcp.WithNumber("scan", mcp.Description("Limit to one scan number")),
		),
		h.listAnswers,
	)

	s.AddTool(
		mcp.NewTool("exambank_answers_put",
			mcp.WithDescription("Record a scanned answer, replacing any answer with the same instance, student and scan number"),
			mcp.WithString("instance_id", mcp.Required(), mcp.Description("Exam instance id")),
			mcp.WithString("student_id", mcp.Required(), mcp.Description("Student id")),
			mcp.WithNumber("scan", mcp.Required(), mcp.Description("Scan number")),
			mcp.WithObject("answer", mcp.Required(), mcp.Description("Answer object")),
		),
		h.putAnswer,
	)

	s.AddTool(
		mcp.NewTool("exambank_answers_delete",
			mcp.WithDescription("Delete scanned answers for an exam instance"),
			mcp.WithString("instance_id", mcp.Required(), mcp.Description("Exam instance id")),
			mcp.WithString("student_id", mcp.Description("Limit to one student")),
			mcp.WithNumber("scan", mcp.Description("Limit to one scan number")),
		),
		h.deleteAnswers,
	)

	s.AddTool(
		mcp.NewTool("exambank_tags_list",
			mcp.WithDescription("List tags, optionally those on given entities or whose text contains a pattern"),
			mcp.WithString("kind", mcp.Description("Entity kind the ids belong to")),
			mcp.WithArray("ids", mcp.Description("Entity ids"), mcp.WithStringItems()),
			mcp.WithArray("match", mcp.Description("Substrings of tag text"), mcp.WithStringItems()),
		),
		h.listTags,
	)

	s.AddTool(
		mcp.NewTool("exambank_tag_assign",
			mcp.WithDescription("Tag an entity, creating the tag if needed"),
			mcp.WithString("kind", mcp.Required(), mcp.Description("subject, question, exam or student")),
			mcp.WithString("id", mcp.Required(), mcp.Description("Entity id")),
			mcp.WithString("tag", mcp.Required(), mcp.Description("Tag text")),
		),
		h.assignTag,
	)

	s.AddTool(
		mcp.NewTool("exambank_tag_unassign",
			mcp.WithDescription("Remove a tag from an entity"),
			mcp.WithString("kind", mcp.Required(), mcp.Description("subject, question, exam or student")),
			mcp.WithString("id", mcp.Required(), mcp.Description("Entity id")),
			mcp.WithString("tag", mcp.Required(), mcp.Description("Tag text")),
		),
		h.unassignTag,
	)

	s.AddTool(
		mcp.NewTool("exambank_config_get",
			mcp.WithDescription("Get a configuration value"),
			mcp.WithString("key", mcp.Description("Config key (author.name, author.email, render.style, limits.max_tag_length, limits.max_payload) or empty for all")),
		),
		h.configGet,
	)

	s.AddTool(
		mcp.NewTool("exambank_config_set",
			mcp.WithDescription("Set a local configuration value"),
			mcp.WithString("key", mcp.Required(), mcp.Description("Config key")),
			mcp.WithString("value", mcp.Required(), mcp.Description("Value to set")),
		),
		h.configSet,
	)
}

// registerExtensionTools adds the tools contributed by extensions.
func registerExtensionTools(s *server.MCPServer, h *handlers) {
	for _, t := range extension.Tools() {
		handler := t.Handler
		s.AddTool(t.Tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if h.extCtx == nil {
				return mcp.NewToolResultError(ErrNotInitialised), nil
			}
			return handler(ctx, h.extCtx, req)
		})
	}
}
