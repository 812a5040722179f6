/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// flags.go defines global CLI flags and accessors for shared state.
//
// Extensions read flag values through the exported accessors rather than
// touching cobra directly.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jpl-au/exambank/internal/config"
)

// DefaultAuthor is recorded when no author is configured.
const DefaultAuthor = "unknown"

var (
	jsonOut bool
	author  string
	force   bool
	db      string
	dir     string
)

// out is the output writer for commands. Tests can replace it.
var out io.Writer = os.Stdout

// in is the input reader for commands reading from stdin.
var in io.Reader = os.Stdin

// Out returns the output writer.
func Out() io.Writer { return out }

// In returns the input reader.
func In() io.Reader { return in }

// Author returns who to record in the audit log.
// Priority: --author flag > author.name config > DefaultAuthor.
func Author() string {
	if author != "" {
		return author
	}
	return DefaultAuthor
}

// Force returns the force flag value.
func Force() bool { return force }

// DB returns the resolved bank name.
// Priority: --db flag > EXAMBANK_DB env var > empty (default).
func DB() string {
	if db != "" {
		return db
	}
	return os.Getenv("EXAMBANK_DB")
}

// Dir returns the explicit project directory if set.
// Priority: --dir flag > EXAMBANK_DIR env var > empty (use discovery).
func Dir() string {
	if dir != "" {
		return dir
	}
	return os.Getenv("EXAMBANK_DIR")
}

// SetOut sets the output writer (for testing).
func SetOut(w io.Writer) { out = w }

// SetIn sets the input reader (for testing).
func SetIn(r io.Reader) { in = r }

// JSON returns true if JSON output is requested.
func JSON() bool { return jsonOut }

// PrintJSON marshals v to JSON and writes it to the output writer.
// Returns nil without writing if JSON output is not requested.
func PrintJSON(v any) error {
	if !jsonOut {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(out, string(b))
	return nil
}

// PrintJSONError prints err as {"error": "..."} when JSON output is
// requested. The error is still returned so the exit status is non-zero;
// the root command silences cobra's own error print in JSON mode.
func PrintJSONError(err error) error {
	if !jsonOut || err == nil {
		return err
	}
	_ = PrintJSON(map[string]string{"error": err.Error()})
	return err
}

// Output returns w when human output is wanted and io.Discard in JSON mode,
// so commands can write progress text unconditionally.
func Output() io.Writer {
	if jsonOut {
		return io.Discard
	}
	return out
}

// detectAuthor returns the configured author name, or "" if none.
func detectAuthor() string {
	if cfg, err := config.Load(); err == nil && cfg.Author.Name != "" {
		return cfg.Author.Name
	}
	return ""
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output JSON")
	rootCmd.PersistentFlags().StringVarP(&author, "author", "a", "", "Author recorded in the audit log")
	rootCmd.PersistentFlags().BoolVar(&force, "force", false, "Skip confirmations")
	rootCmd.PersistentFlags().StringVar(&db, "db", "", "Bank name (e.g., term2 for exambank-term2.db)")
	rootCmd.PersistentFlags().StringVar(&dir, "dir", "", "Project directory holding .exambank (skip discovery)")
}
