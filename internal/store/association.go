// association.go implements the association maintainer shared by every
// entity store.
//
// An association links a parent row to child rows. Two physical layouts
// exist: a join table holding the id pair, and a nullable foreign key on
// the child row (questions.subjectId). Both expose the same connect and
// disconnect primitives, and reconcile applies the merge or replace
// discipline on top of them.
//
// Replace disconnects every previously linked child, including ones that
// remain in the new set, then connects the new set. Inside one transaction
// the net effect is the new set; observers of individual writes see a
// disconnect and reconnect for unchanged links.

package store

import (
	"context"
	"fmt"
)

// linker performs the raw row writes for one association layout.
type linker interface {
	link(ctx context.Context, q querier, parentID, childID string) error
	unlink(ctx context.Context, q querier, parentID, childID string) error
}

// joinTable links rows through a two-column table keyed on the pair.
type joinTable struct {
	table     string
	parentCol string
	childCol  string
}

func (j joinTable) link(ctx context.Context, q querier, parentID, childID string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO `+j.table+` (`+j.parentCol+`, `+j.childCol+`) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		parentID, childID)
	if err != nil {
		return dbErr("link "+j.table, err)
	}
	return nil
}

func (j joinTable) unlink(ctx context.Context, q querier, parentID, childID string) error {
	_, err := q.ExecContext(ctx,
		`DELETE FROM `+j.table+` WHERE `+j.parentCol+` = ? AND `+j.childCol+` = ?`,
		parentID, childID)
	if err != nil {
		return dbErr("unlink "+j.table, err)
	}
	return nil
}

// foreignKey links a child row to at most one parent via a nullable column.
type foreignKey struct {
	table  string
	column string
}

func (f foreignKey) link(ctx context.Context, q querier, parentID, childID string) error {
	return execOne(ctx, q, "link "+f.table, `UPDATE `+f.table+` SET `+f.column+` = ? WHERE id = ?`, parentID, childID)
}

// unlink only clears the column if it still points at parentID, so
// disconnecting a child that has since moved to another parent is a no-op.
func (f foreignKey) unlink(ctx context.Context, q querier, parentID, childID string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE `+f.table+` SET `+f.column+` = NULL WHERE id = ? AND `+f.column+` = ?`,
		childID, parentID)
	if err != nil {
		return dbErr("unlink "+f.table, err)
	}
	return nil
}

// association is one parent/child relationship.
type association struct {
	parent Kind
	child  Kind
	rows   linker
}

var (
	subjectQuestions = association{
		parent: KindSubject,
		child:  KindQuestion,
		rows:   foreignKey{table: "questions", column: "subjectId"},
	}
	examQuestions = association{
		parent: KindExam,
		child:  KindQuestion,
		rows:   joinTable{table: "examQuestions", parentCol: "examId", childCol: "questionId"},
	}
	instanceStudents = association{
		parent: KindExamInstance,
		child:  KindStudent,
		rows:   joinTable{table: "examInstanceStudents", parentCol: "examInstanceId", childCol: "studentId"},
	}
)

// tagAssociation returns the entity-to-tag association for a taggable kind.
func tagAssociation(k Kind) (association, error) {
	spec, err := taggableSpec(k)
	if err != nil {
		return association{}, err
	}
	return association{
		parent: k,
		child:  KindTag,
		rows:   joinTable{table: spec.tagTable, parentCol: spec.tagColumn, childCol: "tagId"},
	}, nil
}

// connect links parentID to childID. With verify set, a missing row on
// either side aborts with a *ReferenceError.
func (a association) connect(ctx context.Context, q querier, parentID, childID string, verify bool) error {
	if verify {
		if err := mustExist(ctx, q, a.parent, parentID); err != nil {
			return err
		}
		if err := mustExist(ctx, q, a.child, childID); err != nil {
			return err
		}
	}
	return a.rows.link(ctx, q, parentID, childID)
}

// disconnect unlinks parentID from childID. With verify set, a missing row
// on either side aborts with ErrNotFound. Removing a link that does not
// exist is not an error.
func (a association) disconnect(ctx context.Context, q querier, parentID, childID string, verify bool) error {
	if verify {
		for _, side := range []struct {
			k  Kind
			id string
		}{{a.parent, parentID}, {a.child, childID}} {
			ok, err := exists(ctx, q, side.k, side.id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s %s", ErrNotFound, side.k, side.id)
			}
		}
	}
	return a.rows.unlink(ctx, q, parentID, childID)
}

// reconcile applies a merge or replace update to the children of parentID.
// old is the set linked before the update, next the caller-supplied set.
func (a association) reconcile(ctx context.Context, q querier, parentID string, old, next []string, replace bool) error {
	if replace {
		for _, id := range old {
			if err := a.disconnect(ctx, q, parentID, id, true); err != nil {
				return err
			}
		}
	}
	for _, id := range next {
		if err := a.connect(ctx, q, parentID, id, true); err != nil {
			return err
		}
	}
	return nil
}

// reconcileTags is reconcile for tag texts: new texts are resolved through
// get-or-create, old texts by lookup.
func (s *SQLiteStore) reconcileTags(ctx context.Context, q querier, k Kind, entityID string, old, next []string, replace bool) error {
	a, err := tagAssociation(k)
	if err != nil {
		return err
	}
	if replace {
		for _, text := range old {
			tag, err := tagByText(ctx, q, text)
			if err != nil {
				return err
			}
			if tag == nil {
				return fmt.Errorf("%w: tag %q", ErrNotFound, text)
			}
			if err := a.disconnect(ctx, q, entityID, tag.ID, true); err != nil {
				return err
			}
		}
	}
	for _, text := range next {
		tag, _, err := s.getOrCreateTag(ctx, q, text)
		if err != nil {
			return err
		}
		if err := a.connect(ctx, q, entityID, tag.ID, true); err != nil {
			return err
		}
	}
	return nil
}

// listOr returns v when the field was supplied (non-nil) and fallback
// otherwise.
func listOr(v, fallback []string) []string {
	if v != nil {
		return v
	}
	return fallback
}
