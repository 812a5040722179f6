// subjects.go implements the subject store.
//
// A subject owns questions through questions.subjectId, so its question
// list is derived and maintained with the foreign-key association.
// Deleting a subject nulls that column on its questions; the questions
// themselves survive.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jpl-au/exambank/internal/validate"
)

const subjectSelect = `SELECT s.id, s.name,
	(SELECT json_group_array(q.id ORDER BY q.rowid) FROM questions q WHERE q.subjectId = s.id),
	(SELECT json_group_array(t.text) FROM subjectTags x JOIN tags t ON t.id = x.tagId WHERE x.subjectId = s.id)
	FROM subjects s`

func scanSubject(sc scanner) (Subject, error) {
	var sub Subject
	var qids, tags string
	if err := sc.Scan(&sub.ID, &sub.Name, &qids, &tags); err != nil {
		return sub, err
	}
	var err error
	if sub.QuestionIDs, err = decodeStrings("questionIds", qids); err != nil {
		return sub, err
	}
	sub.Tags, err = decodeTags(tags)
	return sub, err
}

func (s *SQLiteStore) selectSubjects(ctx context.Context, q querier, where string, args ...any) ([]Subject, error) {
	rows, err := q.QueryContext(ctx, subjectSelect+" "+where+" ORDER BY s.rowid", args...)
	if err != nil {
		return nil, fmt.Errorf("select subjects: %w", err)
	}
	defer rows.Close()

	var out []Subject
	for rows.Next() {
		sub, err := scanSubject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) subject(ctx context.Context, q querier, id string) (*Subject, error) {
	subs, err := s.selectSubjects(ctx, q, `WHERE s.id = ?`, id)
	if err != nil || len(subs) == 0 {
		return nil, err
	}
	return &subs[0], nil
}

// Subjects lists subjects matching f. A nil filter lists every subject.
func (s *SQLiteStore) Subjects(ctx context.Context, f *SubjectFilter) ([]Subject, error) {
	switch {
	case f == nil:
		return s.selectSubjects(ctx, s.db, "")
	case f.SubjectIDs != nil:
		return s.selectSubjects(ctx, s.db, `WHERE s.id IN (SELECT value FROM json_each(?))`, jsonList(f.SubjectIDs))
	case f.Tags != nil:
		return s.selectSubjects(ctx, s.db, `WHERE s.id IN (`+tagMatchIDs(kinds[KindSubject])+`)`, likePatterns(f.Tags))
	}
	return s.selectSubjects(ctx, s.db, "")
}

// Subject returns the subject with id, or nil if none exists.
func (s *SQLiteStore) Subject(ctx context.Context, id string) (*Subject, error) {
	return s.subject(ctx, s.db, id)
}

func (s *SQLiteStore) insertSubject(ctx context.Context, q querier, in Subject) (string, error) {
	if err := validate.Name("name", in.Name); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUserError, err)
	}
	id, err := newID()
	if err != nil {
		return "", err
	}
	if err := execOne(ctx, q, "insert subject",
		`INSERT INTO subjects (id, name) VALUES (?, ?)`, id, in.Name); err != nil {
		return "", err
	}
	if err := subjectQuestions.reconcile(ctx, q, id, nil, in.QuestionIDs, false); err != nil {
		return "", err
	}
	if err := s.reconcileTags(ctx, q, KindSubject, id, nil, in.Tags, false); err != nil {
		return "", err
	}
	return id, nil
}

// InsertSubject creates a subject and claims the listed questions for it.
// An unknown question id aborts the insert with a *ReferenceError.
func (s *SQLiteStore) InsertSubject(ctx context.Context, in Subject) (*Subject, error) {
	var id string
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.insertSubject(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(Change{Kind: KindSubject, ID: id, Op: OpInsert})
	return s.Subject(ctx, id)
}

// UpdateSubject applies p to the subject. Returns nil if it does not exist.
//
// With replace, questions and tags not listed in p are released; an absent
// QuestionIDs keeps the current questions and an absent Tags clears them.
// Without replace, listed questions and tags are added to the existing ones.
func (s *SQLiteStore) UpdateSubject(ctx context.Context, id string, p SubjectPatch, replace bool) (*Subject, error) {
	var found bool
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		old, err := s.subject(ctx, tx, id)
		if err != nil || old == nil {
			return err
		}
		found = true

		name := old.Name
		if p.Name != nil {
			if err := validate.Name("name", *p.Name); err != nil {
				return fmt.Errorf("%w: %w", ErrUserError, err)
			}
			name = *p.Name
		}
		if err := execOne(ctx, tx, "update subject",
			`UPDATE subjects SET name = ? WHERE id = ?`, name, id); err != nil {
			return err
		}

		questions, tags := p.QuestionIDs, p.Tags
		if replace {
			questions = listOr(p.QuestionIDs, old.QuestionIDs)
			tags = listOr(p.Tags, []string{})
		}
		if err := subjectQuestions.reconcile(ctx, tx, id, old.QuestionIDs, questions, replace); err != nil {
			return err
		}
		return s.reconcileTags(ctx, tx, KindSubject, id, old.Tags, tags, replace)
	})
	if err != nil || !found {
		return nil, err
	}
	s.notify(Change{Kind: KindSubject, ID: id, Op: OpUpdate})
	return s.Subject(ctx, id)
}

// DeleteSubject removes a subject. Its questions survive with no subject.
func (s *SQLiteStore) DeleteSubject(ctx context.Context, id string) (bool, error) {
	return s.deleteRow(ctx, KindSubject, id)
}
