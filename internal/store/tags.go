// tags.go implements the tag store: get-or-create by text, lookups,
// scoped listings, substring filtering and assignment.
//
// Separated from the entity stores because tags have their own lifecycle.
// A tag row outlives every assignment; deleting an entity only removes
// its join rows.
//
// Design: tag text is unique, so get-or-create resolves to the existing
// row instead of inserting a duplicate. Assignment goes through the
// association maintainer like every other link.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jpl-au/exambank/internal/validate"
)

func scanTag(sc scanner) (*Tag, error) {
	var t Tag
	if err := sc.Scan(&t.ID, &t.Text); err != nil {
		return nil, err
	}
	return &t, nil
}

func queryTag(ctx context.Context, q querier, where string, arg any) (*Tag, error) {
	t, err := scanTag(q.QueryRowContext(ctx, `SELECT id, text FROM tags WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return t, nil
}

func tagByID(ctx context.Context, q querier, id string) (*Tag, error) {
	return queryTag(ctx, q, `id = ?`, id)
}

func tagByText(ctx context.Context, q querier, text string) (*Tag, error) {
	return queryTag(ctx, q, `text = ?`, text)
}

// Tag returns the tag with id, or nil if none exists.
func (s *SQLiteStore) Tag(ctx context.Context, id string) (*Tag, error) {
	return tagByID(ctx, s.db, id)
}

// TagByText returns the tag with exactly text, or nil if none exists.
func (s *SQLiteStore) TagByText(ctx context.Context, text string) (*Tag, error) {
	return tagByText(ctx, s.db, text)
}

// getOrCreateTag resolves text to a tag, inserting it if absent. The
// second result reports whether a row was created. Within a larger write it
// must run on that write's transaction.
func (s *SQLiteStore) getOrCreateTag(ctx context.Context, q querier, text string) (*Tag, bool, error) {
	if err := validate.Tag(text, s.currentLimits().MaxTagLength); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrUserError, err)
	}
	t, err := tagByText(ctx, q, text)
	if err != nil || t != nil {
		return t, false, err
	}
	id, err := newID()
	if err != nil {
		return nil, false, err
	}
	if err := execOne(ctx, q, "insert tag", `INSERT INTO tags (id, text) VALUES (?, ?)`, id, text); err != nil {
		return nil, false, err
	}
	return &Tag{ID: id, Text: text}, true, nil
}

// GetOrCreateTag returns the tag with text, creating it if absent. Calling
// it twice with the same text yields the same id.
func (s *SQLiteStore) GetOrCreateTag(ctx context.Context, text string) (*Tag, error) {
	var t *Tag
	var created bool
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		var err error
		t, created, err = s.getOrCreateTag(ctx, tx, text)
		return err
	})
	if err != nil {
		return nil, err
	}
	if created {
		s.notify(Change{Kind: KindTag, ID: t.ID, Op: OpInsert})
	}
	return t, nil
}

// UpdateTag renames a tag. Returns nil if the tag does not exist. Renaming
// onto text already used by another tag fails with ErrDatabase.
func (s *SQLiteStore) UpdateTag(ctx context.Context, id, text string) (*Tag, error) {
	if err := validate.Tag(text, s.currentLimits().MaxTagLength); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUserError, err)
	}
	var found bool
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		old, err := tagByID(ctx, tx, id)
		if err != nil || old == nil {
			return err
		}
		found = true
		return execOne(ctx, tx, "update tag", `UPDATE tags SET text = ? WHERE id = ?`, text, id)
	})
	if err != nil || !found {
		return nil, err
	}
	s.notify(Change{Kind: KindTag, ID: id, Op: OpUpdate})
	return s.Tag(ctx, id)
}

// DeleteTag removes a tag and, by cascade, every assignment of it.
func (s *SQLiteStore) DeleteTag(ctx context.Context, id string) (bool, error) {
	return s.deleteRow(ctx, KindTag, id)
}

// Tags lists tags. With no filter every tag is returned. Results are
// sorted by text; an empty result is nil.
func (s *SQLiteStore) Tags(ctx context.Context, f *TagFilter) ([]Tag, error) {
	q := `SELECT id, text FROM tags`
	var args []any

	switch {
	case f != nil && f.Kind != "":
		spec, err := taggableSpec(f.Kind)
		if err != nil {
			return nil, err
		}
		q = `SELECT DISTINCT t.id, t.text FROM tags t JOIN ` + spec.tagTable + ` x ON x.tagId = t.id`
		if f.IDs != nil {
			q += ` WHERE x.` + spec.tagColumn + ` IN (SELECT value FROM json_each(?))`
			args = append(args, jsonList(f.IDs))
		}
	case f != nil && f.Text != nil:
		q += ` WHERE EXISTS (SELECT 1 FROM json_each(?) WHERE tags.text LIKE value ESCAPE '\')`
		args = append(args, likePatterns(f.Text))
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.SortFunc(tags, func(a, b Tag) int { return strings.Compare(a.Text, b.Text) })
	return tags, nil
}

// FilterByTagText returns ids of kind entities carrying at least one tag
// whose text contains any of patterns (case-insensitive for ASCII).
func (s *SQLiteStore) FilterByTagText(ctx context.Context, k Kind, patterns []string) ([]string, error) {
	spec, err := taggableSpec(k)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM `+spec.table+` WHERE id IN (`+tagMatchIDs(spec)+`) ORDER BY rowid`,
		likePatterns(patterns))
	if err != nil {
		return nil, fmt.Errorf("filter %s by tag: %w", k, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AssignTag links tagID to the entity. Returns false if the entity or the
// tag does not exist. Assigning twice is a no-op.
func (s *SQLiteStore) AssignTag(ctx context.Context, tagID string, k Kind, entityID string) (bool, error) {
	return s.setTag(ctx, tagID, k, entityID, true)
}

// UnassignTag unlinks tagID from the entity. Returns false if the tag does
// not exist; unassigning a tag the entity never had returns true.
func (s *SQLiteStore) UnassignTag(ctx context.Context, tagID string, k Kind, entityID string) (bool, error) {
	return s.setTag(ctx, tagID, k, entityID, false)
}

func (s *SQLiteStore) setTag(ctx context.Context, tagID string, k Kind, entityID string, assign bool) (bool, error) {
	a, err := tagAssociation(k)
	if err != nil {
		return false, err
	}
	var ok bool
	err = s.Tx(ctx, func(tx *sql.Tx) error {
		tagOK, err := exists(ctx, tx, KindTag, tagID)
		if err != nil || !tagOK {
			return err
		}
		if !assign {
			ok = true
			return a.disconnect(ctx, tx, entityID, tagID, false)
		}
		entityOK, err := exists(ctx, tx, k, entityID)
		if err != nil || !entityOK {
			return err
		}
		ok = true
		return a.connect(ctx, tx, entityID, tagID, false)
	})
	if err != nil || !ok {
		return false, err
	}
	op := OpAssign
	if !assign {
		op = OpUnassign
	}
	s.notify(Change{Kind: k, ID: entityID, Op: op})
	return true, nil
}

// deleteRow deletes one row of kind k by id. Returns false if it did not
// exist. Cascades remove dependent rows.
func (s *SQLiteStore) deleteRow(ctx context.Context, k Kind, id string) (bool, error) {
	spec, err := specFor(k)
	if err != nil {
		return false, err
	}
	var deleted bool
	err = s.Tx(ctx, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, k, id)
		if err != nil || !ok {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM `+spec.table+` WHERE id = ?`, id)
		if err != nil {
			return dbErr("delete "+string(k), err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return dbErr("delete "+string(k), err)
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	if deleted {
		s.notify(Change{Kind: k, ID: id, Op: OpDelete})
	}
	return deleted, nil
}
