// instances.go implements the exam instance store.
//
// An instance belongs to exactly one exam and is removed with it. Students
// are enrolled through examInstanceStudents; groups is an ordered label
// list stored as JSON text.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const instanceSelect = `SELECT i.id, i.examId, i.seed, i.generated, i.groups,
	(SELECT json_group_array(x.studentId ORDER BY x.rowid) FROM examInstanceStudents x WHERE x.examInstanceId = i.id)
	FROM examInstances i`

func scanInstance(sc scanner) (ExamInstance, error) {
	var in ExamInstance
	var groups, students string
	if err := sc.Scan(&in.ID, &in.ExamID, &in.Seed, &in.Generated, &groups, &students); err != nil {
		return in, err
	}
	var err error
	if in.Groups, err = decodeStrings("groups", groups); err != nil {
		return in, err
	}
	in.StudentIDs, err = decodeStrings("studentIds", students)
	return in, err
}

func (s *SQLiteStore) selectInstances(ctx context.Context, q querier, where string, args ...any) ([]ExamInstance, error) {
	rows, err := q.QueryContext(ctx, instanceSelect+" "+where+" ORDER BY i.rowid", args...)
	if err != nil {
		return nil, fmt.Errorf("select exam instances: %w", err)
	}
	defer rows.Close()

	var out []ExamInstance
	for rows.Next() {
		in, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exam instance: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) instance(ctx context.Context, q querier, id string) (*ExamInstance, error) {
	ins, err := s.selectInstances(ctx, q, `WHERE i.id = ?`, id)
	if err != nil || len(ins) == 0 {
		return nil, err
	}
	return &ins[0], nil
}

// ExamInstances returns every instance of examID in creation order.
func (s *SQLiteStore) ExamInstances(ctx context.Context, examID string) ([]ExamInstance, error) {
	return s.selectInstances(ctx, s.db, `WHERE i.examId = ?`, examID)
}

// ExamInstance returns the instance with id, or nil if none exists.
func (s *SQLiteStore) ExamInstance(ctx context.Context, id string) (*ExamInstance, error) {
	return s.instance(ctx, s.db, id)
}

// now is the clock used for default generated timestamps.
var now = func() time.Time { return time.Now().UTC() }

func timestamp() string {
	return now().Format(time.RFC3339)
}

// generatedAt picks the generated timestamp: the supplied value, else the
// previous one, else the current time. It never regresses to empty.
func generatedAt(supplied *string, previous string) string {
	switch {
	case supplied != nil && *supplied != "":
		return *supplied
	case previous != "":
		return previous
	}
	return timestamp()
}

func (s *SQLiteStore) insertInstance(ctx context.Context, q querier, in ExamInstance) (string, error) {
	if err := mustExist(ctx, q, KindExam, in.ExamID); err != nil {
		return "", err
	}
	groups, err := encodeStrings("groups", in.Groups, s.currentLimits().MaxPayload)
	if err != nil {
		return "", err
	}
	id, err := newID()
	if err != nil {
		return "", err
	}
	if err := execOne(ctx, q, "insert exam instance",
		`INSERT INTO examInstances (id, examId, seed, generated, groups) VALUES (?, ?, ?, ?, ?)`,
		id, in.ExamID, in.Seed, generatedAt(&in.Generated, ""), groups); err != nil {
		return "", err
	}
	if err := instanceStudents.reconcile(ctx, q, id, nil, in.StudentIDs, false); err != nil {
		return "", err
	}
	return id, nil
}

// InsertExamInstance creates an instance of an existing exam and enrols the
// listed students. An unknown exam or student id aborts with a
// *ReferenceError.
func (s *SQLiteStore) InsertExamInstance(ctx context.Context, in ExamInstance) (*ExamInstance, error) {
	var id string
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.insertInstance(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(Change{Kind: KindExamInstance, ID: id, Op: OpInsert})
	return s.ExamInstance(ctx, id)
}

// UpdateExamInstance applies p to the instance. Returns nil if it does not
// exist.
//
// Supplied groups replace the list wholesale in both modes; absent groups
// are kept on merge and cleared on replace. Student ids are unioned, or with
// replace become exactly p.StudentIDs (absent clears).
func (s *SQLiteStore) UpdateExamInstance(ctx context.Context, id string, p ExamInstancePatch, replace bool) (*ExamInstance, error) {
	var found bool
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		old, err := s.instance(ctx, tx, id)
		if err != nil || old == nil {
			return err
		}
		found = true

		examID, seed := old.ExamID, old.Seed
		if p.ExamID != nil {
			if err := mustExist(ctx, tx, KindExam, *p.ExamID); err != nil {
				return err
			}
			examID = *p.ExamID
		}
		if p.Seed != nil {
			seed = *p.Seed
		}
		groups := old.Groups
		switch {
		case p.Groups != nil:
			groups = p.Groups
		case replace:
			groups = []string{}
		}
		encoded, err := encodeStrings("groups", groups, s.currentLimits().MaxPayload)
		if err != nil {
			return err
		}
		if err := execOne(ctx, tx, "update exam instance",
			`UPDATE examInstances SET examId = ?, seed = ?, generated = ?, groups = ? WHERE id = ?`,
			examID, seed, generatedAt(p.Generated, old.Generated), encoded, id); err != nil {
			return err
		}

		students := p.StudentIDs
		if replace {
			students = listOr(p.StudentIDs, []string{})
		}
		return instanceStudents.reconcile(ctx, tx, id, old.StudentIDs, students, replace)
	})
	if err != nil || !found {
		return nil, err
	}
	s.notify(Change{Kind: KindExamInstance, ID: id, Op: OpUpdate})
	return s.ExamInstance(ctx, id)
}

// DeleteExamInstance removes an instance with its enrolments and answers.
func (s *SQLiteStore) DeleteExamInstance(ctx context.Context, id string) (bool, error) {
	return s.deleteRow(ctx, KindExamInstance, id)
}

// DeleteExamInstances removes every instance of examID. Returns false when
// the exam had none.
func (s *SQLiteStore) DeleteExamInstances(ctx context.Context, examID string) (bool, error) {
	var ids []string
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT id FROM examInstances WHERE examId = ? ORDER BY rowid`, examID)
		if err != nil {
			return fmt.Errorf("list exam instances: %w", err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("scan id: %w", err)
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM examInstances WHERE examId = ?`, examID); err != nil {
			return dbErr("delete exam instances", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		s.notify(Change{Kind: KindExamInstance, ID: id, Op: OpDelete})
	}
	return len(ids) > 0, nil
}
