// Package log provides centralised audit logging for exambank operations.
// Logs are stored in ~/.exambank/log/exambank-log.db and track all CLI
// commands, MCP tool invocations and committed store changes across projects.
//
// # Fluent API
//
// Use the fluent builder API to construct and write log entries:
//
//	log.Event("entity:show", "read").
//		Author(ctx.Author()).
//		Kind("question").
//		ID(id).
//		Write(err)
//
//	log.Event("bundle:import", "import").
//		Author(ctx.Author()).
//		Detail("file", path).
//		Detail("count", n).
//		Write(err)
//
// The source parameter follows the format "{extension}:{command}" for CLI
// commands or "mcp:{tool}" for MCP tools. Examples: "entity:add",
// "tag:assign", "mcp:exambank_insert".
package log

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var (
	global *Logger
	mu     sync.Mutex
)

// Entry represents a single log entry.
type Entry struct {
	Source string `json:"source"` // e.g., "entity:add", "mcp:exambank_get"
	Author string `json:"author"` // who performed the action
	Action string `json:"action"` // verb: read, insert, update, delete, assign, etc.
	Kind   string `json:"kind,omitempty"`
	ID     string `json:"id,omitempty"`

	// Timing
	Start int64 `json:"start"` // unix timestamp when Event() called
	End   int64 `json:"end"`   // unix timestamp when Write() called

	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Detail  map[string]any `json:"detail,omitempty"`
}

// Builder constructs a log entry using a fluent API.
// Create with [Event], chain methods to set fields, then call [Builder.Write]
// to write the entry.
type Builder struct {
	entry Entry
}

// Event creates a new log entry builder for an operation.
//
// The source identifies where the operation originated:
//   - CLI commands: "{extension}:{command}" (e.g., "entity:add", "tag:assign")
//   - MCP tools: "mcp:{tool}" (e.g., "mcp:exambank_update")
//   - Store notifications: "store:{kind}"
func Event(source, action string) *Builder {
	return &Builder{
		entry: Entry{
			Source: source,
			Action: action,
			Start:  time.Now().Unix(),
		},
	}
}

// Author sets who performed the operation.
//
// For CLI commands, use ctx.Author() which returns the configured author.
// For MCP tools, use "mcp" as the author.
func (b *Builder) Author(author string) *Builder {
	b.entry.Author = author
	return b
}

// Kind sets the entity kind this operation affects.
func (b *Builder) Kind(kind string) *Builder {
	b.entry.Kind = kind
	return b
}

// ID sets the entity id this operation affects. For operations that create
// an entity, set it after success to the new id.
func (b *Builder) ID(id string) *Builder {
	b.entry.ID = id
	return b
}

// Detail adds a key-value pair to the log entry's detail map.
//
// Use for operation-specific data that doesn't fit standard fields:
// filters, result counts, file names, etc. Can be called multiple times.
func (b *Builder) Detail(key string, value any) *Builder {
	if b.entry.Detail == nil {
		b.entry.Detail = make(map[string]any)
	}
	b.entry.Detail[key] = value
	return b
}

// Write writes the log entry to the database, deriving success/failure from err.
//
// If err is nil, the entry is logged as successful.
// If err is non-nil, the entry is logged as failed with the error message.
//
//	sub, err := svc.InsertSubject(ctx, in)
//	log.Event("entity:add", "insert").Kind("subject").Write(err)
//	if err != nil {
//		return err
//	}
func (b *Builder) Write(err error) {
	b.entry.End = time.Now().Unix()
	b.entry.Success = err == nil
	if err != nil {
		b.entry.Error = err.Error()
	}
	Log(b.entry)
}

// Open initialises the global logger. Safe to call multiple times.
// Errors are returned but callers may choose to ignore them (best-effort logging).
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return nil
	}

	p := dbPath()
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return err
	}

	global = &Logger{db: db}
	return nil
}

// SetProject sets the project identifier for subsequent log entries.
// The dir should be the absolute path to the .exambank directory.
func SetProject(dir string) {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.project = hash(dir)
	}
}

// Log writes an entry. Safe to call if logger not initialised (no-op).
func Log(e Entry) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return
	}
	l.log(e)
}

// Recent returns up to n entries for the current project, newest first.
// Returns nil if the logger is not open.
func Recent(n int) ([]Entry, error) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return nil, nil
	}
	return l.recent(n)
}

// Close closes the global logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.db.Close()
		global = nil
	}
}
