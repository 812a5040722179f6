// log_storage.go implements SQLite-based persistent audit logging.
//
// Separated from log.go to isolate database concerns. The main log.go provides
// the fluent API for building log entries, while this file handles persistence.
// The project field is a hash of the directory path so entries from many
// banks can share one log without recording where those banks live.
//
// Errors during logging are reported to stderr and otherwise ignored. An
// exam update succeeds even if it cannot be recorded.

package log

import (
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"
)

// Logger writes audit log entries to a SQLite database.
type Logger struct {
	db      *sql.DB
	project string
}

func (l *Logger) log(e Entry) {
	var detail *string
	if len(e.Detail) > 0 {
		if b, err := json.Marshal(e.Detail); err == nil {
			s := string(b)
			detail = &s
		}
	}

	success := 0
	if e.Success {
		success = 1
	}

	_, err := l.db.Exec(`
		INSERT INTO log (start, end, project, source, author, action, kind, entity_id, success, error, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Start, e.End, l.project, e.Source, nilIfEmpty(e.Author), e.Action,
		nilIfEmpty(e.Kind), nilIfEmpty(e.ID),
		success, nilIfEmpty(e.Error), detail,
	)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "exambank: audit log write failed: %v\n", err)
	}
}

func (l *Logger) recent(n int) ([]Entry, error) {
	rows, err := l.db.Query(`
		SELECT start, end, source, author, action, kind, entity_id, success, error, detail
		FROM log WHERE project = ? ORDER BY id DESC LIMIT ?`, l.project, n)
	if err != nil {
		return nil, fmt.Errorf("query log: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var author, kind, id, msg, detail sql.NullString
		var success int
		if err := rows.Scan(&e.Start, &e.End, &e.Source, &author, &e.Action, &kind, &id, &success, &msg, &detail); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		e.Author, e.Kind, e.ID, e.Error = author.String, kind.String, id.String, msg.String
		e.Success = success == 1
		if detail.Valid {
			_ = json.Unmarshal([]byte(detail.String), &e.Detail) // written by log()
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// dbPathFunc is the function that returns the database path.
// Tests can override this to use a temp directory.
var dbPathFunc = defaultDBPath

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fall back to current directory if home cannot be determined.
		return filepath.Join(".exambank", "log", "exambank-log.db")
	}
	return filepath.Join(home, ".exambank", "log", "exambank-log.db")
}

func dbPath() string {
	return dbPathFunc()
}

// DBPath returns the path to the log database.
func DBPath() string {
	return dbPath()
}

// hash creates a project identifier from the directory path.
func hash(s string) string {
	h, err := blake2b.New(8, nil) // 64-bit = 16 hex chars
	if err != nil {
		panic("blake2b.New failed: " + err.Error())
	}
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

// migrate creates the log table if it doesn't exist.
func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS log (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			start     INTEGER NOT NULL,
			end       INTEGER NOT NULL,
			project   TEXT NOT NULL,
			source    TEXT NOT NULL,
			author    TEXT,
			action    TEXT NOT NULL,
			kind      TEXT,
			entity_id TEXT,
			success   INTEGER NOT NULL,
			error     TEXT,
			detail    TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_log_start ON log(start);
		CREATE INDEX IF NOT EXISTS idx_log_project ON log(project);
		CREATE INDEX IF NOT EXISTS idx_log_entity ON log(kind, entity_id);
	`)
	return err
}

// nilIfEmpty returns nil for empty strings so absent fields are stored as NULL.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
