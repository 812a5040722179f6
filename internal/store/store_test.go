package store_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jpl-au/exambank/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupStore creates a temporary SQLite store for testing.
// Returns the store and a cleanup function.
func setupStore(t *testing.T) (*store.SQLiteStore, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "exambank-store-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.Open(dbPath)
	require.NoError(t, err)

	require.NoError(t, s.Init())

	cleanup := func() {
		s.Close()
		os.RemoveAll(tmpDir)
	}

	return s, cleanup
}

func ptr[T any](v T) *T { return &v }

func addSubject(t *testing.T, s store.Store, name string) *store.Subject {
	t.Helper()
	sub, err := s.InsertSubject(context.Background(), store.Subject{Name: name})
	require.NoError(t, err)
	require.NotNil(t, sub)
	return sub
}

func addQuestion(t *testing.T, s store.Store, text string) *store.Question {
	t.Helper()
	q, err := s.InsertQuestion(context.Background(), store.Question{Text: text, Type: "single"})
	require.NoError(t, err)
	require.NotNil(t, q)
	return q
}

func addStudent(t *testing.T, s store.Store, first, last string) *store.Student {
	t.Helper()
	st, err := s.InsertStudent(context.Background(), store.Student{FirstName: first, LastName: last})
	require.NoError(t, err)
	require.NotNil(t, st)
	return st
}

func addExam(t *testing.T, s store.Store, questionIDs ...string) *store.Exam {
	t.Helper()
	ex, err := s.InsertExam(context.Background(), store.Exam{Name: ptr("exam"), QuestionIDs: questionIDs})
	require.NoError(t, err)
	require.NotNil(t, ex)
	return ex
}

// --- Schema ---

func TestStore_InitIdempotent(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	addSubject(t, s, "Maths")
	require.NoError(t, s.Init())

	subs, err := s.Subjects(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestStore_Pragmas(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	var mode string
	require.NoError(t, s.DB().QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, s.DB().QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bank.db")

	s, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Init())
	sub := addSubject(t, s, "Physics")
	require.NoError(t, s.Checkpoint(context.Background()))
	require.NoError(t, s.Close())

	s, err = store.Open(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Init())

	got, err := s.Subject(context.Background(), sub.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Physics", got.Name)
}

// --- Basic CRUD ---

func TestStore_SubjectCRUD(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	sub := addSubject(t, s, "Chemistry")
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, []string{}, sub.QuestionIDs)
	assert.Equal(t, []string{}, sub.Tags)

	got, err := s.UpdateSubject(ctx, sub.ID, store.SubjectPatch{Name: ptr("Organic Chemistry")}, false)
	require.NoError(t, err)
	assert.Equal(t, "Organic Chemistry", got.Name)

	ok, err := s.DeleteSubject(ctx, sub.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = s.Subject(ctx, sub.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_MissingTargets(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	q, err := s.Question(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, q)

	upd, err := s.UpdateQuestion(ctx, "nope", store.QuestionPatch{Text: ptr("x")}, false)
	require.NoError(t, err)
	assert.Nil(t, upd)

	ok, err := s.DeleteExam(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	list, err := s.Students(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, list)
}

func TestStore_EmptyNameRejected(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	_, err := s.InsertSubject(context.Background(), store.Subject{Name: "  "})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUserError)
}

func TestStore_QuestionRoundTrip(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	in := store.Question{
		Text:           "What is 1+1?",
		Type:           "single",
		QuestionObject: store.Object{"a": 1.0, "choices": []any{"1", "2"}, "meta": map[string]any{"x": true}},
		AnswerObject:   store.Object{"correct": "2"},
	}
	q, err := s.InsertQuestion(ctx, in)
	require.NoError(t, err)

	got, err := s.Question(ctx, q.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, in.Text, got.Text)
	assert.Equal(t, json.Number("1"), got.QuestionObject["a"])
	assert.Equal(t, []any{"1", "2"}, got.QuestionObject["choices"])
	assert.Equal(t, map[string]any{"x": true}, got.QuestionObject["meta"])
	assert.Equal(t, store.Object{"correct": "2"}, got.AnswerObject)
	assert.Nil(t, got.SubjectID)
}

func TestStore_QuestionObjectMerge(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	q, err := s.InsertQuestion(ctx, store.Question{
		Text: "q", Type: "t",
		QuestionObject: store.Object{"a": 1.0, "nested": map[string]any{"x": 1.0, "y": 2.0}},
	})
	require.NoError(t, err)

	got, err := s.UpdateQuestion(ctx, q.ID, store.QuestionPatch{
		QuestionObject: store.Object{"nested": map[string]any{"y": 3.0}, "b": "new"},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, json.Number("1"), got.QuestionObject["a"])
	assert.Equal(t, "new", got.QuestionObject["b"])
	assert.Equal(t, map[string]any{"x": json.Number("1"), "y": json.Number("3")}, got.QuestionObject["nested"])

	got, err = s.UpdateQuestion(ctx, q.ID, store.QuestionPatch{QuestionObject: store.Object{"only": true}}, true)
	require.NoError(t, err)
	assert.Equal(t, store.Object{"only": true}, got.QuestionObject)

	// Replace with no answer object supplied resets it.
	assert.Equal(t, store.Object{}, got.AnswerObject)
}

func TestStore_MergeKeepsLargeIntegers(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	// 2^53 + 1 has no exact float64 form.
	q, err := s.InsertQuestion(ctx, store.Question{
		Text: "q", Type: "t",
		AnswerObject: store.Object{"barcode": int64(9007199254740993), "a": 1},
	})
	require.NoError(t, err)

	got, err := s.UpdateQuestion(ctx, q.ID, store.QuestionPatch{AnswerObject: store.Object{"a": 2}}, false)
	require.NoError(t, err)
	assert.Equal(t, json.Number("9007199254740993"), got.AnswerObject["barcode"])
	assert.Equal(t, json.Number("2"), got.AnswerObject["a"])

	var raw string
	require.NoError(t, s.DB().QueryRowContext(ctx, `SELECT answerObject FROM questions WHERE id = ?`, q.ID).Scan(&raw))
	assert.JSONEq(t, `{"a": 2, "barcode": 9007199254740993}`, raw)
	assert.Contains(t, raw, "9007199254740993")
}

func TestStore_ScalarOverwriteIgnoresMode(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	st := addStudent(t, s, "Ada", "Lovelace")
	for _, replace := range []bool{false, true} {
		got, err := s.UpdateStudent(ctx, st.ID, store.StudentPatch{LastName: ptr("King")}, replace)
		require.NoError(t, err)
		assert.Equal(t, "Ada", got.FirstName)
		assert.Equal(t, "King", got.LastName)
	}
}

func TestStore_StudentExternalID(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	a, err := s.InsertStudent(ctx, store.Student{FirstName: "A", LastName: "One", StudentID: ptr("s-1")})
	require.NoError(t, err)
	assert.Equal(t, "s-1", *a.StudentID)

	_, err = s.InsertStudent(ctx, store.Student{FirstName: "B", LastName: "Two", StudentID: ptr("s-1")})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrDatabase)

	got, err := s.Students(ctx, &store.StudentFilter{ExternalIDs: []string{"s-1"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	cleared, err := s.UpdateStudent(ctx, a.ID, store.StudentPatch{StudentID: ptr("")}, false)
	require.NoError(t, err)
	assert.Nil(t, cleared.StudentID)
}

// --- Stats ---

func TestStore_Stats(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	q1 := addQuestion(t, s, "q1")
	q2 := addQuestion(t, s, "q2")
	ex := addExam(t, s, q1.ID, q2.ID)
	st := addStudent(t, s, "Ada", "Lovelace")
	in, err := s.InsertExamInstance(ctx, store.ExamInstance{ExamID: ex.ID, StudentIDs: []string{st.ID}})
	require.NoError(t, err)
	_, err = s.InsertExamInstanceAnswer(ctx, store.ExamInstanceAnswer{ExamInstanceID: in.ID, StudentID: st.ID, ScanNumber: 1})
	require.NoError(t, err)
	_, err = s.UpdateQuestion(ctx, q1.ID, store.QuestionPatch{Tags: []string{"easy"}}, false)
	require.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Questions)
	assert.Equal(t, int64(1), stats.Exams)
	assert.Equal(t, int64(1), stats.Students)
	assert.Equal(t, int64(1), stats.ExamInstances)
	assert.Equal(t, int64(1), stats.Answers)
	assert.Equal(t, int64(2), stats.ExamQuestions)
	assert.Equal(t, int64(1), stats.Enrolments)
	assert.Equal(t, int64(1), stats.Tags)
	assert.Equal(t, int64(1), stats.TagAssignments)
}

// --- Observer ---

func TestStore_ObserverAfterCommit(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	var changes []store.Change
	s.Observe(func(c store.Change) { changes = append(changes, c) })

	sub := addSubject(t, s, "Maths")
	_, err := s.InsertExam(ctx, store.Exam{QuestionIDs: []string{"missing"}})
	require.Error(t, err)
	_, err = s.DeleteSubject(ctx, sub.ID)
	require.NoError(t, err)

	assert.Equal(t, []store.Change{
		{Kind: store.KindSubject, ID: sub.ID, Op: store.OpInsert},
		{Kind: store.KindSubject, ID: sub.ID, Op: store.OpDelete},
	}, changes)
}

// --- Limits ---

func TestStore_Limits(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	s.SetLimits(store.Limits{MaxTagLength: 5, MaxPayload: 32})

	_, err := s.GetOrCreateTag(ctx, "toolongtag")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUserError)

	_, err = s.InsertQuestion(ctx, store.Question{
		Text: "q", Type: "t",
		QuestionObject: store.Object{"body": "this payload is far longer than thirty-two bytes"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrTooLarge)

	qs, err := s.Questions(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, qs)
}

// --- Batch ---

func TestStore_BatchRollsBack(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	var notified int
	s.Observe(func(store.Change) { notified++ })

	err := s.Batch(ctx, func(b *store.Batch) error {
		if _, err := b.InsertSubject(store.Subject{Name: "kept?"}); err != nil {
			return err
		}
		_, err := b.InsertExam(store.Exam{QuestionIDs: []string{"missing"}})
		return err
	})
	require.Error(t, err)

	var ref *store.ReferenceError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, store.KindQuestion, ref.Kind)

	subs, err := s.Subjects(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, subs)
	assert.Zero(t, notified)
}

func TestStore_BatchCommits(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	var subjectID, questionID string
	err := s.Batch(ctx, func(b *store.Batch) error {
		var err error
		if subjectID, err = b.InsertSubject(store.Subject{Name: "Biology"}); err != nil {
			return err
		}
		questionID, err = b.InsertQuestion(store.Question{Text: "q", Type: "t", SubjectID: &subjectID})
		return err
	})
	require.NoError(t, err)

	sub, err := s.Subject(ctx, subjectID)
	require.NoError(t, err)
	assert.Equal(t, []string{questionID}, sub.QuestionIDs)
}

func TestInit_RecordsSchemaVersion(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	v, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	// Reopening applies nothing and keeps the data.
	addSubject(t, s, "Physics")
	require.NoError(t, s.Init())
	v, err = s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Subjects)
}
