// checkpoint.go flushes the write-ahead log.
//
// The bank checkpoints when it is closed and on demand from "exambank
// checkpoint", so the .db file can be copied or committed on its own.

package store

import (
	"context"
	"fmt"
)

// Checkpoint copies every committed WAL frame into the database file and
// truncates the WAL to zero bytes.
func (s *SQLiteStore) Checkpoint(ctx context.Context) error {
	var busy, frames, copied int
	err := s.db.QueryRowContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`).Scan(&busy, &frames, &copied)
	if err != nil {
		return fmt.Errorf("WAL checkpoint: %w", err)
	}
	if busy != 0 {
		return fmt.Errorf("WAL checkpoint: database busy (%d of %d frames copied)", copied, frames)
	}
	return nil
}
