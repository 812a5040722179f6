// students.go implements the student store.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jpl-au/exambank/internal/validate"
)

const studentSelect = `SELECT st.id, st.firstName, st.lastName, st.studentId,
	(SELECT json_group_array(t.text) FROM studentTags x JOIN tags t ON t.id = x.tagId WHERE x.studentId = st.id)
	FROM students st`

func scanStudent(sc scanner) (Student, error) {
	var st Student
	var external sql.NullString
	var tags string
	if err := sc.Scan(&st.ID, &st.FirstName, &st.LastName, &external, &tags); err != nil {
		return st, err
	}
	if external.Valid {
		st.StudentID = &external.String
	}
	var err error
	st.Tags, err = decodeTags(tags)
	return st, err
}

func (s *SQLiteStore) selectStudents(ctx context.Context, q querier, where string, args ...any) ([]Student, error) {
	rows, err := q.QueryContext(ctx, studentSelect+" "+where+" ORDER BY st.rowid", args...)
	if err != nil {
		return nil, fmt.Errorf("select students: %w", err)
	}
	defer rows.Close()

	var out []Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) student(ctx context.Context, q querier, id string) (*Student, error) {
	sts, err := s.selectStudents(ctx, q, `WHERE st.id = ?`, id)
	if err != nil || len(sts) == 0 {
		return nil, err
	}
	return &sts[0], nil
}

// Students lists students matching f. A nil filter lists every student.
func (s *SQLiteStore) Students(ctx context.Context, f *StudentFilter) ([]Student, error) {
	switch {
	case f == nil:
	case f.StudentIDs != nil:
		return s.selectStudents(ctx, s.db, `WHERE st.id IN (SELECT value FROM json_each(?))`, jsonList(f.StudentIDs))
	case f.ExternalIDs != nil:
		return s.selectStudents(ctx, s.db, `WHERE st.studentId IN (SELECT value FROM json_each(?))`, jsonList(f.ExternalIDs))
	case f.Tags != nil:
		return s.selectStudents(ctx, s.db, `WHERE st.id IN (`+tagMatchIDs(kinds[KindStudent])+`)`, likePatterns(f.Tags))
	}
	return s.selectStudents(ctx, s.db, "")
}

// Student returns the student with id, or nil if none exists.
func (s *SQLiteStore) Student(ctx context.Context, id string) (*Student, error) {
	return s.student(ctx, s.db, id)
}

func validateStudentNames(first, last string) error {
	if err := validate.Name("firstName", first); err != nil {
		return fmt.Errorf("%w: %w", ErrUserError, err)
	}
	if err := validate.Name("lastName", last); err != nil {
		return fmt.Errorf("%w: %w", ErrUserError, err)
	}
	return nil
}

func (s *SQLiteStore) insertStudent(ctx context.Context, q querier, in Student) (string, error) {
	if err := validateStudentNames(in.FirstName, in.LastName); err != nil {
		return "", err
	}
	id, err := newID()
	if err != nil {
		return "", err
	}
	if err := execOne(ctx, q, "insert student",
		`INSERT INTO students (id, firstName, lastName, studentId) VALUES (?, ?, ?, ?)`,
		id, in.FirstName, in.LastName, nullableString(in.StudentID)); err != nil {
		return "", err
	}
	if err := s.reconcileTags(ctx, q, KindStudent, id, nil, in.Tags, false); err != nil {
		return "", err
	}
	return id, nil
}

// InsertStudent creates a student. A duplicate external StudentID fails
// with ErrDatabase.
func (s *SQLiteStore) InsertStudent(ctx context.Context, in Student) (*Student, error) {
	var id string
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.insertStudent(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(Change{Kind: KindStudent, ID: id, Op: OpInsert})
	return s.Student(ctx, id)
}

// UpdateStudent applies p to the student. Returns nil if it does not exist.
// Tags are unioned, or replaced (absent clears) with replace.
func (s *SQLiteStore) UpdateStudent(ctx context.Context, id string, p StudentPatch, replace bool) (*Student, error) {
	var found bool
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		old, err := s.student(ctx, tx, id)
		if err != nil || old == nil {
			return err
		}
		found = true

		first, last, external := old.FirstName, old.LastName, old.StudentID
		if p.FirstName != nil {
			first = *p.FirstName
		}
		if p.LastName != nil {
			last = *p.LastName
		}
		if p.StudentID != nil {
			external = p.StudentID
		}
		if err := validateStudentNames(first, last); err != nil {
			return err
		}
		if err := execOne(ctx, tx, "update student",
			`UPDATE students SET firstName = ?, lastName = ?, studentId = ? WHERE id = ?`,
			first, last, nullableString(external), id); err != nil {
			return err
		}

		tags := p.Tags
		if replace {
			tags = listOr(p.Tags, []string{})
		}
		return s.reconcileTags(ctx, tx, KindStudent, id, old.Tags, tags, replace)
	})
	if err != nil || !found {
		return nil, err
	}
	s.notify(Change{Kind: KindStudent, ID: id, Op: OpUpdate})
	return s.Student(ctx, id)
}

// DeleteStudent removes a student with their enrolments, answers and tag
// links.
func (s *SQLiteStore) DeleteStudent(ctx context.Context, id string) (bool, error) {
	return s.deleteRow(ctx, KindStudent, id)
}
