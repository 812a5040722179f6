// questions.go implements the question store.

package store

import (
	"context"
	"database/sql"
	"fmt"
)

const questionSelect = `SELECT q.id, q.text, q.type, q.questionObject, q.answerObject, q.subjectId,
	(SELECT json_group_array(t.text) FROM questionTags x JOIN tags t ON t.id = x.tagId WHERE x.questionId = q.id)
	FROM questions q`

func scanQuestion(sc scanner) (Question, error) {
	var qu Question
	var qo, ao, tags string
	var subject sql.NullString
	if err := sc.Scan(&qu.ID, &qu.Text, &qu.Type, &qo, &ao, &subject, &tags); err != nil {
		return qu, err
	}
	if subject.Valid {
		qu.SubjectID = &subject.String
	}
	var err error
	if qu.QuestionObject, err = decodeObject("questionObject", qo); err != nil {
		return qu, err
	}
	if qu.AnswerObject, err = decodeObject("answerObject", ao); err != nil {
		return qu, err
	}
	qu.Tags, err = decodeTags(tags)
	return qu, err
}

func (s *SQLiteStore) selectQuestions(ctx context.Context, q querier, where string, args ...any) ([]Question, error) {
	rows, err := q.QueryContext(ctx, questionSelect+" "+where+" ORDER BY q.rowid", args...)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		qu, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, qu)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) question(ctx context.Context, q querier, id string) (*Question, error) {
	qs, err := s.selectQuestions(ctx, q, `WHERE q.id = ?`, id)
	if err != nil || len(qs) == 0 {
		return nil, err
	}
	return &qs[0], nil
}

// Questions lists questions matching f. A nil filter lists every question.
// Filtering by subject returns nil when none of the subjects exist.
func (s *SQLiteStore) Questions(ctx context.Context, f *QuestionFilter) ([]Question, error) {
	switch {
	case f == nil:
	case f.QuestionIDs != nil:
		return s.selectQuestions(ctx, s.db, `WHERE q.id IN (SELECT value FROM json_each(?))`, jsonList(f.QuestionIDs))
	case f.ExamIDs != nil:
		return s.selectQuestions(ctx, s.db,
			`WHERE q.id IN (SELECT questionId FROM examQuestions WHERE examId IN (SELECT value FROM json_each(?)))`,
			jsonList(f.ExamIDs))
	case f.Tags != nil:
		return s.selectQuestions(ctx, s.db, `WHERE q.id IN (`+tagMatchIDs(kinds[KindQuestion])+`)`, likePatterns(f.Tags))
	case f.SubjectIDs != nil:
		var n int
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM subjects WHERE id IN (SELECT value FROM json_each(?))`,
			jsonList(f.SubjectIDs)).Scan(&n)
		if err != nil {
			return nil, fmt.Errorf("count subjects: %w", err)
		}
		if n == 0 {
			return nil, nil
		}
		return s.selectQuestions(ctx, s.db, `WHERE q.subjectId IN (SELECT value FROM json_each(?))`, jsonList(f.SubjectIDs))
	}
	return s.selectQuestions(ctx, s.db, "")
}

// Question returns the question with id, or nil if none exists.
func (s *SQLiteStore) Question(ctx context.Context, id string) (*Question, error) {
	return s.question(ctx, s.db, id)
}

// subjectRef resolves an optional subject id to a column value, verifying
// it exists. nil and "" both mean no subject.
func subjectRef(ctx context.Context, q querier, id *string) (any, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	if err := mustExist(ctx, q, KindSubject, *id); err != nil {
		return nil, err
	}
	return *id, nil
}

func (s *SQLiteStore) insertQuestion(ctx context.Context, q querier, in Question) (string, error) {
	limit := s.currentLimits().MaxPayload
	qo, err := encodeObject("questionObject", in.QuestionObject, limit)
	if err != nil {
		return "", err
	}
	ao, err := encodeObject("answerObject", in.AnswerObject, limit)
	if err != nil {
		return "", err
	}
	subject, err := subjectRef(ctx, q, in.SubjectID)
	if err != nil {
		return "", err
	}
	id, err := newID()
	if err != nil {
		return "", err
	}
	if err := execOne(ctx, q, "insert question",
		`INSERT INTO questions (id, text, type, questionObject, answerObject, subjectId) VALUES (?, ?, ?, ?, ?, ?)`,
		id, in.Text, in.Type, qo, ao, subject); err != nil {
		return "", err
	}
	if err := s.reconcileTags(ctx, q, KindQuestion, id, nil, in.Tags, false); err != nil {
		return "", err
	}
	return id, nil
}

// InsertQuestion creates a question. A supplied SubjectID must exist.
func (s *SQLiteStore) InsertQuestion(ctx context.Context, in Question) (*Question, error) {
	var id string
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.insertQuestion(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(Change{Kind: KindQuestion, ID: id, Op: OpInsert})
	return s.Question(ctx, id)
}

// UpdateQuestion applies p to the question. Returns nil if it does not exist.
//
// Question and answer objects are deep-merged, or replaced (absent becomes
// {}) with replace. Tags are unioned, or replaced (absent clears) with
// replace. The subject link only changes when p.SubjectID is supplied.
func (s *SQLiteStore) UpdateQuestion(ctx context.Context, id string, p QuestionPatch, replace bool) (*Question, error) {
	var found bool
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		old, err := s.question(ctx, tx, id)
		if err != nil || old == nil {
			return err
		}
		found = true

		text, typ := old.Text, old.Type
		if p.Text != nil {
			text = *p.Text
		}
		if p.Type != nil {
			typ = *p.Type
		}
		limit := s.currentLimits().MaxPayload
		qo, err := encodeObject("questionObject", mergeOrReplace(old.QuestionObject, p.QuestionObject, replace), limit)
		if err != nil {
			return err
		}
		ao, err := encodeObject("answerObject", mergeOrReplace(old.AnswerObject, p.AnswerObject, replace), limit)
		if err != nil {
			return err
		}
		subjectID := old.SubjectID
		if p.SubjectID != nil {
			subjectID = p.SubjectID
		}
		subject, err := subjectRef(ctx, tx, subjectID)
		if err != nil {
			return err
		}
		if err := execOne(ctx, tx, "update question",
			`UPDATE questions SET text = ?, type = ?, questionObject = ?, answerObject = ?, subjectId = ? WHERE id = ?`,
			text, typ, qo, ao, subject, id); err != nil {
			return err
		}

		tags := p.Tags
		if replace {
			tags = listOr(p.Tags, []string{})
		}
		return s.reconcileTags(ctx, tx, KindQuestion, id, old.Tags, tags, replace)
	})
	if err != nil || !found {
		return nil, err
	}
	s.notify(Change{Kind: KindQuestion, ID: id, Op: OpUpdate})
	return s.Question(ctx, id)
}

// DeleteQuestion removes a question and its exam and tag links.
func (s *SQLiteStore) DeleteQuestion(ctx context.Context, id string) (bool, error) {
	return s.deleteRow(ctx, KindQuestion, id)
}
