// stats.go implements aggregate counts for operational visibility.
//
// Separated to collect read-only, aggregate queries distinct from CRUD.
// None of them decode payload columns.

package store

import (
	"context"
	"fmt"
)

// Stats returns row counts for every entity table, the association tables
// and the answers table.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	var st Stats

	counts := []struct {
		dst   *int64
		query string
	}{
		{&st.Subjects, `SELECT COUNT(*) FROM subjects`},
		{&st.Questions, `SELECT COUNT(*) FROM questions`},
		{&st.Exams, `SELECT COUNT(*) FROM exams`},
		{&st.Students, `SELECT COUNT(*) FROM students`},
		{&st.Tags, `SELECT COUNT(*) FROM tags`},
		{&st.ExamInstances, `SELECT COUNT(*) FROM examInstances`},
		{&st.Answers, `SELECT COUNT(*) FROM examInstanceAnswers`},
		{&st.ExamQuestions, `SELECT COUNT(*) FROM examQuestions`},
		{&st.Enrolments, `SELECT COUNT(*) FROM examInstanceStudents`},
		{&st.TagAssignments, `SELECT
			(SELECT COUNT(*) FROM subjectTags) +
			(SELECT COUNT(*) FROM questionTags) +
			(SELECT COUNT(*) FROM examTags) +
			(SELECT COUNT(*) FROM studentTags)`},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
	}
	return &st, nil
}
