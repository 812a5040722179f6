// answers.go implements the exam instance answer store.
//
// Answers have no id of their own. The triple (instance, student, scan
// number) is the primary key, and writing to a used triple overwrites the
// stored answer. Scan numbers are chosen by the caller.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
)

// AnswerKey formats the key reported in change notifications for an answer.
func AnswerKey(instanceID, studentID string, scan int) string {
	return instanceID + "/" + studentID + "/" + strconv.Itoa(scan)
}

// answerWhere builds the WHERE clause shared by select and delete. studentID
// and scan narrow the match independently when supplied.
func answerWhere(instanceID, studentID string, scan *int) (string, []any) {
	where := `WHERE examInstanceId = ?`
	args := []any{instanceID}
	if studentID != "" {
		where += ` AND studentId = ?`
		args = append(args, studentID)
	}
	if scan != nil {
		where += ` AND scanNumber = ?`
		args = append(args, *scan)
	}
	return where, args
}

func (s *SQLiteStore) selectAnswers(ctx context.Context, q querier, where string, args ...any) ([]ExamInstanceAnswer, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT examInstanceId, studentId, scanNumber, answerObject FROM examInstanceAnswers `+where+` ORDER BY rowid`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("select answers: %w", err)
	}
	defer rows.Close()

	var out []ExamInstanceAnswer
	for rows.Next() {
		var a ExamInstanceAnswer
		var raw string
		if err := rows.Scan(&a.ExamInstanceID, &a.StudentID, &a.ScanNumber, &raw); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		if a.AnswerObject, err = decodeObject("answerObject", raw); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) answer(ctx context.Context, q querier, instanceID, studentID string, scan int) (*ExamInstanceAnswer, error) {
	where, args := answerWhere(instanceID, studentID, &scan)
	as, err := s.selectAnswers(ctx, q, where, args...)
	if err != nil || len(as) == 0 {
		return nil, err
	}
	return &as[0], nil
}

// ExamInstanceAnswers lists answers recorded for instanceID. An empty
// studentID matches every student and a nil scan every scan.
func (s *SQLiteStore) ExamInstanceAnswers(ctx context.Context, instanceID, studentID string, scan *int) ([]ExamInstanceAnswer, error) {
	where, args := answerWhere(instanceID, studentID, scan)
	return s.selectAnswers(ctx, s.db, where, args...)
}

func (s *SQLiteStore) insertAnswer(ctx context.Context, q querier, in ExamInstanceAnswer) error {
	if err := mustExist(ctx, q, KindExamInstance, in.ExamInstanceID); err != nil {
		return err
	}
	if err := mustExist(ctx, q, KindStudent, in.StudentID); err != nil {
		return err
	}
	raw, err := encodeObject("answerObject", in.AnswerObject, s.currentLimits().MaxPayload)
	if err != nil {
		return err
	}
	return execOne(ctx, q, "insert answer",
		`INSERT INTO examInstanceAnswers (studentId, examInstanceId, scanNumber, answerObject) VALUES (?, ?, ?, ?)
		ON CONFLICT (studentId, examInstanceId, scanNumber) DO UPDATE SET answerObject = excluded.answerObject`,
		in.StudentID, in.ExamInstanceID, in.ScanNumber, raw)
}

// InsertExamInstanceAnswer records an answer. A second insert with the same
// key triple overwrites the first. The instance and the student must exist.
func (s *SQLiteStore) InsertExamInstanceAnswer(ctx context.Context, in ExamInstanceAnswer) (*ExamInstanceAnswer, error) {
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		return s.insertAnswer(ctx, tx, in)
	})
	if err != nil {
		return nil, err
	}
	s.notify(Change{Kind: KindAnswer, ID: AnswerKey(in.ExamInstanceID, in.StudentID, in.ScanNumber), Op: OpInsert})
	return s.answer(ctx, s.db, in.ExamInstanceID, in.StudentID, in.ScanNumber)
}

// UpdateExamInstanceAnswer replaces the stored answer object. Returns nil
// if no answer exists for the triple.
func (s *SQLiteStore) UpdateExamInstanceAnswer(ctx context.Context, instanceID, studentID string, scan int, answer Object) (*ExamInstanceAnswer, error) {
	raw, err := encodeObject("answerObject", answer, s.currentLimits().MaxPayload)
	if err != nil {
		return nil, err
	}
	var found bool
	err = s.Tx(ctx, func(tx *sql.Tx) error {
		old, err := s.answer(ctx, tx, instanceID, studentID, scan)
		if err != nil || old == nil {
			return err
		}
		found = true
		return execOne(ctx, tx, "update answer",
			`UPDATE examInstanceAnswers SET answerObject = ?
			WHERE examInstanceId = ? AND studentId = ? AND scanNumber = ?`,
			raw, instanceID, studentID, scan)
	})
	if err != nil || !found {
		return nil, err
	}
	s.notify(Change{Kind: KindAnswer, ID: AnswerKey(instanceID, studentID, scan), Op: OpUpdate})
	return s.answer(ctx, s.db, instanceID, studentID, scan)
}

// DeleteExamInstanceAnswers removes the matching answers. Returns false when
// nothing matched.
func (s *SQLiteStore) DeleteExamInstanceAnswers(ctx context.Context, instanceID, studentID string, scan *int) (bool, error) {
	where, args := answerWhere(instanceID, studentID, scan)
	var deleted []ExamInstanceAnswer
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		var err error
		deleted, err = s.selectAnswers(ctx, tx, where, args...)
		if err != nil || len(deleted) == 0 {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM examInstanceAnswers `+where, args...); err != nil {
			return dbErr("delete answers", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	for _, a := range deleted {
		s.notify(Change{Kind: KindAnswer, ID: AnswerKey(a.ExamInstanceID, a.StudentID, a.ScanNumber), Op: OpDelete})
	}
	return len(deleted) > 0, nil
}
