// schema.go applies the embedded schema files under sql/.
//
// Files run in name order (hence the 001_ prefixes). PRAGMA user_version
// holds the number of files already applied, so opening a bank written by an
// older build runs only the files added since. Every statement also uses IF
// NOT EXISTS, which keeps banks created before the version was recorded
// working.

package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"slices"
)

//go:embed sql/*.sql
var schemas embed.FS

// schemaFiles returns the embedded schema file names in apply order.
func schemaFiles() ([]string, error) {
	names, err := fs.Glob(schemas, "sql/*.sql")
	if err != nil {
		return nil, fmt.Errorf("read schema directory: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// SchemaVersion returns the number of schema files applied to the bank.
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// migrate applies every schema file past the recorded version, each in its
// own transaction together with the version bump.
func (s *SQLiteStore) migrate(ctx context.Context) error {
	names, err := schemaFiles()
	if err != nil {
		return err
	}
	applied, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if applied > len(names) {
		return fmt.Errorf("bank schema version %d is newer than this build (%d)", applied, len(names))
	}

	for i := applied; i < len(names); i++ {
		data, err := schemas.ReadFile(names[i])
		if err != nil {
			return fmt.Errorf("read %s: %w", names[i], err)
		}
		err = s.Tx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, string(data)); err != nil {
				return err
			}
			// PRAGMA does not take bind parameters.
			_, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, i+1))
			return err
		})
		if err != nil {
			return fmt.Errorf("apply %s: %w", names[i], err)
		}
	}
	return nil
}
