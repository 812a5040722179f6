// exams.go implements the exam store.
//
// Exam questions live in the examQuestions join table and keep their
// insertion order. The subject is a single nullable column even though
// the Exam type exposes a list; see subjectColumn.

package store

import (
	"context"
	"database/sql"
	"fmt"
)

const examSelect = `SELECT e.id, e.name, e.subjectId, e.configs,
	(SELECT json_group_array(x.questionId ORDER BY x.rowid) FROM examQuestions x WHERE x.examId = e.id),
	(SELECT json_group_array(t.text) FROM examTags x JOIN tags t ON t.id = x.tagId WHERE x.examId = e.id)
	FROM exams e`

func scanExam(sc scanner) (Exam, error) {
	var ex Exam
	var name, subject sql.NullString
	var configs, qids, tags string
	if err := sc.Scan(&ex.ID, &name, &subject, &configs, &qids, &tags); err != nil {
		return ex, err
	}
	if name.Valid {
		ex.Name = &name.String
	}
	ex.SubjectIDs = []string{}
	if subject.Valid {
		ex.SubjectIDs = []string{subject.String}
	}
	var err error
	if ex.Configs, err = decodeObject("configs", configs); err != nil {
		return ex, err
	}
	if ex.QuestionIDs, err = decodeStrings("questionIds", qids); err != nil {
		return ex, err
	}
	ex.Tags, err = decodeTags(tags)
	return ex, err
}

func (s *SQLiteStore) selectExams(ctx context.Context, q querier, where string, args ...any) ([]Exam, error) {
	rows, err := q.QueryContext(ctx, examSelect+" "+where+" ORDER BY e.rowid", args...)
	if err != nil {
		return nil, fmt.Errorf("select exams: %w", err)
	}
	defer rows.Close()

	var out []Exam
	for rows.Next() {
		ex, err := scanExam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exam: %w", err)
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) exam(ctx context.Context, q querier, id string) (*Exam, error) {
	exs, err := s.selectExams(ctx, q, `WHERE e.id = ?`, id)
	if err != nil || len(exs) == 0 {
		return nil, err
	}
	return &exs[0], nil
}

// Exams lists exams matching f. A nil filter lists every exam.
func (s *SQLiteStore) Exams(ctx context.Context, f *ExamFilter) ([]Exam, error) {
	switch {
	case f == nil:
	case f.SubjectIDs != nil:
		return s.selectExams(ctx, s.db, `WHERE e.subjectId IN (SELECT value FROM json_each(?))`, jsonList(f.SubjectIDs))
	case f.ExamIDs != nil:
		return s.selectExams(ctx, s.db, `WHERE e.id IN (SELECT value FROM json_each(?))`, jsonList(f.ExamIDs))
	case f.Tags != nil:
		return s.selectExams(ctx, s.db, `WHERE e.id IN (`+tagMatchIDs(kinds[KindExam])+`)`, likePatterns(f.Tags))
	}
	return s.selectExams(ctx, s.db, "")
}

// Exam returns the exam with id, or nil if none exists.
func (s *SQLiteStore) Exam(ctx context.Context, id string) (*Exam, error) {
	return s.exam(ctx, s.db, id)
}

// subjectColumn picks the single persisted subject from a subject list.
// Only ids[0] is kept; it must exist.
func subjectColumn(ctx context.Context, q querier, ids []string) (any, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return subjectRef(ctx, q, &ids[0])
}

// nullableString maps nil and "" to NULL.
func nullableString(v *string) any {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}

func (s *SQLiteStore) insertExam(ctx context.Context, q querier, in Exam) (string, error) {
	configs, err := encodeObject("configs", in.Configs, s.currentLimits().MaxPayload)
	if err != nil {
		return "", err
	}
	subject, err := subjectColumn(ctx, q, in.SubjectIDs)
	if err != nil {
		return "", err
	}
	id, err := newID()
	if err != nil {
		return "", err
	}
	if err := execOne(ctx, q, "insert exam",
		`INSERT INTO exams (id, name, subjectId, configs) VALUES (?, ?, ?, ?)`,
		id, nullableString(in.Name), subject, configs); err != nil {
		return "", err
	}
	if err := examQuestions.reconcile(ctx, q, id, nil, in.QuestionIDs, false); err != nil {
		return "", err
	}
	if err := s.reconcileTags(ctx, q, KindExam, id, nil, in.Tags, false); err != nil {
		return "", err
	}
	return id, nil
}

// InsertExam creates an exam with its questions and tags. An unknown
// question or subject id aborts the insert with a *ReferenceError.
func (s *SQLiteStore) InsertExam(ctx context.Context, in Exam) (*Exam, error) {
	var id string
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.insertExam(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(Change{Kind: KindExam, ID: id, Op: OpInsert})
	return s.Exam(ctx, id)
}

// UpdateExam applies p to the exam. Returns nil if it does not exist.
//
// Configs are deep-merged, or replaced (absent becomes {}) with replace.
// Question ids are unioned; with replace they become exactly p.QuestionIDs,
// or stay as they are when absent. Tags follow the same rules except that
// an absent Tags list clears them on replace. The subject becomes
// p.SubjectIDs[0] when supplied; otherwise it is kept on merge and cleared
// on replace.
func (s *SQLiteStore) UpdateExam(ctx context.Context, id string, p ExamPatch, replace bool) (*Exam, error) {
	var found bool
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		old, err := s.exam(ctx, tx, id)
		if err != nil || old == nil {
			return err
		}
		found = true

		name := old.Name
		if p.Name != nil {
			name = p.Name
		}
		subjects := old.SubjectIDs
		switch {
		case len(p.SubjectIDs) > 0:
			subjects = p.SubjectIDs
		case replace:
			subjects = nil
		}
		subject, err := subjectColumn(ctx, tx, subjects)
		if err != nil {
			return err
		}
		configs, err := encodeObject("configs", mergeOrReplace(old.Configs, p.Configs, replace), s.currentLimits().MaxPayload)
		if err != nil {
			return err
		}
		if err := execOne(ctx, tx, "update exam",
			`UPDATE exams SET name = ?, subjectId = ?, configs = ? WHERE id = ?`,
			nullableString(name), subject, configs, id); err != nil {
			return err
		}

		questions, tags := p.QuestionIDs, p.Tags
		if replace {
			questions = listOr(p.QuestionIDs, old.QuestionIDs)
			tags = listOr(p.Tags, []string{})
		}
		if err := examQuestions.reconcile(ctx, tx, id, old.QuestionIDs, questions, replace); err != nil {
			return err
		}
		return s.reconcileTags(ctx, tx, KindExam, id, old.Tags, tags, replace)
	})
	if err != nil || !found {
		return nil, err
	}
	s.notify(Change{Kind: KindExam, ID: id, Op: OpUpdate})
	return s.Exam(ctx, id)
}

// DeleteExam removes an exam. Its instances, their enrolments and their
// answers are removed by cascade.
func (s *SQLiteStore) DeleteExam(ctx context.Context, id string) (bool, error) {
	return s.deleteRow(ctx, KindExam, id)
}
