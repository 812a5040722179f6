package store_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jpl-au/exambank/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstance_InsertDefaults(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	ex := addExam(t, s)
	in, err := s.InsertExamInstance(ctx, store.ExamInstance{ExamID: ex.ID, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, int64(42), in.Seed)
	assert.Equal(t, []string{}, in.Groups)
	assert.Equal(t, []string{}, in.StudentIDs)

	_, err = time.Parse(time.RFC3339, in.Generated)
	assert.NoError(t, err)
}

func TestInstance_InsertUnknownReferences(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := s.InsertExamInstance(ctx, store.ExamInstance{ExamID: "missing"})
	var ref *store.ReferenceError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, store.KindExam, ref.Kind)

	ex := addExam(t, s)
	_, err = s.InsertExamInstance(ctx, store.ExamInstance{ExamID: ex.ID, StudentIDs: []string{"ghost"}})
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, store.KindStudent, ref.Kind)

	list, err := s.ExamInstances(ctx, ex.ID)
	require.NoError(t, err)
	assert.Nil(t, list)
}

func TestInstance_UpdateGroupsAndGenerated(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	ex := addExam(t, s)
	in, err := s.InsertExamInstance(ctx, store.ExamInstance{
		ExamID:    ex.ID,
		Generated: "2024-01-02T03:04:05Z",
		Groups:    []string{"A", "B"},
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02T03:04:05Z", in.Generated)

	got, err := s.UpdateExamInstance(ctx, in.ID, store.ExamInstancePatch{Seed: ptr(int64(7))}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got.Groups)
	assert.Equal(t, "2024-01-02T03:04:05Z", got.Generated)
	assert.Equal(t, int64(7), got.Seed)

	got, err = s.UpdateExamInstance(ctx, in.ID, store.ExamInstancePatch{Groups: []string{"C"}}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, got.Groups)

	got, err = s.UpdateExamInstance(ctx, in.ID, store.ExamInstancePatch{Generated: ptr("")}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Groups)
	assert.Equal(t, "2024-01-02T03:04:05Z", got.Generated)

	got, err = s.UpdateExamInstance(ctx, in.ID, store.ExamInstancePatch{Generated: ptr("2025-06-01T00:00:00Z")}, false)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01T00:00:00Z", got.Generated)
}

func TestInstance_Students(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	ex := addExam(t, s)
	a := addStudent(t, s, "A", "A")
	b := addStudent(t, s, "B", "B")
	in, err := s.InsertExamInstance(ctx, store.ExamInstance{ExamID: ex.ID, StudentIDs: []string{a.ID}})
	require.NoError(t, err)

	got, err := s.UpdateExamInstance(ctx, in.ID, store.ExamInstancePatch{StudentIDs: []string{b.ID}}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, got.StudentIDs)

	got, err = s.UpdateExamInstance(ctx, in.ID, store.ExamInstancePatch{StudentIDs: []string{b.ID}}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, got.StudentIDs)

	got, err = s.UpdateExamInstance(ctx, in.ID, store.ExamInstancePatch{}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.StudentIDs)
}

func TestInstance_ListAndDeleteByExam(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	ex := addExam(t, s)
	other := addExam(t, s)
	for range 2 {
		_, err := s.InsertExamInstance(ctx, store.ExamInstance{ExamID: ex.ID})
		require.NoError(t, err)
	}
	keep, err := s.InsertExamInstance(ctx, store.ExamInstance{ExamID: other.ID})
	require.NoError(t, err)

	list, err := s.ExamInstances(ctx, ex.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	var deleted []string
	s.Observe(func(c store.Change) {
		if c.Op == store.OpDelete {
			deleted = append(deleted, c.ID)
		}
	})

	ok, err := s.DeleteExamInstances(ctx, ex.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.ElementsMatch(t, []string{list[0].ID, list[1].ID}, deleted)

	ok, err = s.DeleteExamInstances(ctx, ex.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	still, err := s.ExamInstance(ctx, keep.ID)
	require.NoError(t, err)
	assert.NotNil(t, still)
}

// --- Answers ---

func setupAnswers(t *testing.T, s store.Store) (instanceID, studentID string) {
	t.Helper()
	ex := addExam(t, s)
	st := addStudent(t, s, "Ada", "Lovelace")
	in, err := s.InsertExamInstance(context.Background(), store.ExamInstance{ExamID: ex.ID, StudentIDs: []string{st.ID}})
	require.NoError(t, err)
	return in.ID, st.ID
}

func TestAnswers_UpsertOnKey(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	inID, stID := setupAnswers(t, s)
	_, err := s.InsertExamInstanceAnswer(ctx, store.ExamInstanceAnswer{
		ExamInstanceID: inID, StudentID: stID, ScanNumber: 1, AnswerObject: store.Object{"q1": "a"},
	})
	require.NoError(t, err)
	got, err := s.InsertExamInstanceAnswer(ctx, store.ExamInstanceAnswer{
		ExamInstanceID: inID, StudentID: stID, ScanNumber: 1, AnswerObject: store.Object{"q1": "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, store.Object{"q1": "b"}, got.AnswerObject)

	all, err := s.ExamInstanceAnswers(ctx, inID, "", nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAnswers_InsertVerifiesReferences(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	inID, stID := setupAnswers(t, s)
	_, err := s.InsertExamInstanceAnswer(ctx, store.ExamInstanceAnswer{ExamInstanceID: "missing", StudentID: stID})
	assert.ErrorIs(t, err, store.ErrUserError)
	_, err = s.InsertExamInstanceAnswer(ctx, store.ExamInstanceAnswer{ExamInstanceID: inID, StudentID: "missing"})
	assert.ErrorIs(t, err, store.ErrUserError)
}

func TestAnswers_SelectFilters(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	inID, stID := setupAnswers(t, s)
	other := addStudent(t, s, "Alan", "Turing")
	for _, a := range []store.ExamInstanceAnswer{
		{ExamInstanceID: inID, StudentID: stID, ScanNumber: 1},
		{ExamInstanceID: inID, StudentID: stID, ScanNumber: 2},
		{ExamInstanceID: inID, StudentID: other.ID, ScanNumber: 1},
	} {
		_, err := s.InsertExamInstanceAnswer(ctx, a)
		require.NoError(t, err)
	}

	got, err := s.ExamInstanceAnswers(ctx, inID, stID, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.ExamInstanceAnswers(ctx, inID, stID, ptr(2))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].ScanNumber)

	got, err = s.ExamInstanceAnswers(ctx, inID, "", ptr(1))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestAnswers_Update(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	inID, stID := setupAnswers(t, s)
	_, err := s.InsertExamInstanceAnswer(ctx, store.ExamInstanceAnswer{
		ExamInstanceID: inID, StudentID: stID, ScanNumber: 1, AnswerObject: store.Object{"a": 1.0, "b": 2.0},
	})
	require.NoError(t, err)

	got, err := s.UpdateExamInstanceAnswer(ctx, inID, stID, 1, store.Object{"c": 3.0})
	require.NoError(t, err)
	assert.Equal(t, store.Object{"c": json.Number("3")}, got.AnswerObject)

	missing, err := s.UpdateExamInstanceAnswer(ctx, inID, stID, 9, store.Object{})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAnswers_DeleteScenario(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	inID, stID := setupAnswers(t, s)

	ok, err := s.DeleteExamInstanceAnswers(ctx, inID, stID, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	for scan := 1; scan <= 2; scan++ {
		_, err := s.InsertExamInstanceAnswer(ctx, store.ExamInstanceAnswer{ExamInstanceID: inID, StudentID: stID, ScanNumber: scan})
		require.NoError(t, err)
	}

	ok, err = s.DeleteExamInstanceAnswers(ctx, inID, stID, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	left, err := s.ExamInstanceAnswers(ctx, inID, stID, nil)
	require.NoError(t, err)
	assert.Empty(t, left)
}
