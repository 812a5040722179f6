package entity_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/jpl-au/exambank/internal/entity"
	"github.com/jpl-au/exambank/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Init())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertGetDelete(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	v, err := entity.Insert(ctx, s, store.KindQuestion,
		entity.JSON([]byte(`{"text": "2+2?", "type": "numeric", "answerObject": {"value": 4}, "tags": ["maths"]}`)))
	require.NoError(t, err)
	q := v.(*store.Question)
	assert.NotEmpty(t, q.ID)
	assert.Equal(t, []string{"maths"}, q.Tags)

	got, err := entity.Get(ctx, s, store.KindQuestion, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q, got)

	require.NoError(t, entity.Delete(ctx, s, store.KindQuestion, q.ID))
	_, err = entity.Get(ctx, s, store.KindQuestion, q.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, entity.Delete(ctx, s, store.KindQuestion, q.ID), store.ErrNotFound)
}

func TestInsert_RejectsUnknownFields(t *testing.T) {
	s := setupStore(t)
	_, err := entity.Insert(context.Background(), s, store.KindSubject, entity.JSON([]byte(`{"nmae": "typo"}`)))
	assert.ErrorIs(t, err, store.ErrUserError)
}

func TestInsert_KeepsLargeIntegers(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	v, err := entity.Insert(ctx, s, store.KindQuestion,
		entity.JSON([]byte(`{"text": "id?", "type": "numeric", "answerObject": {"id": 9007199254740993}}`)))
	require.NoError(t, err)

	got, err := entity.Get(ctx, s, store.KindQuestion, entity.ID(v))
	require.NoError(t, err)
	assert.Equal(t, json.Number("9007199254740993"), got.(*store.Question).AnswerObject["id"])
}

func TestValue(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	sub, err := s.InsertSubject(ctx, store.Subject{Name: "Maths", Tags: []string{"core"}})
	require.NoError(t, err)

	t.Run("empty filter list matches nothing", func(t *testing.T) {
		list, err := entity.List(ctx, s, store.KindSubject, entity.Value(&store.SubjectFilter{Tags: []string{}}))
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("nil filter lists everything", func(t *testing.T) {
		var f *store.SubjectFilter
		list, err := entity.List(ctx, s, store.KindSubject, entity.Value(f))
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("replace with empty list clears", func(t *testing.T) {
		_, after, err := entity.Update(ctx, s, store.KindSubject, sub.ID,
			entity.Value(store.SubjectPatch{Tags: []string{}}), true)
		require.NoError(t, err)
		assert.Empty(t, after.(*store.Subject).Tags)
		assert.Equal(t, "Maths", after.(*store.Subject).Name)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := entity.List(ctx, s, store.KindSubject, entity.Value(store.ExamFilter{}))
		assert.ErrorIs(t, err, store.ErrUserError)
	})
}

func TestUpdate_ReturnsBeforeAndAfter(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	sub, err := s.InsertSubject(ctx, store.Subject{Name: "Maths", Tags: []string{"core"}})
	require.NoError(t, err)

	before, after, err := entity.Update(ctx, s, store.KindSubject, sub.ID,
		entity.Value(store.SubjectPatch{Name: ptr("Mathematics")}), false)
	require.NoError(t, err)
	assert.Equal(t, "Maths", before.(*store.Subject).Name)
	assert.Equal(t, "Mathematics", after.(*store.Subject).Name)
	assert.Equal(t, []string{"core"}, after.(*store.Subject).Tags)

	_, after, err = entity.Update(ctx, s, store.KindSubject, sub.ID, entity.JSON(nil), true)
	require.NoError(t, err)
	assert.Empty(t, after.(*store.Subject).Tags, "replace clears absent collections")

	_, _, err = entity.Update(ctx, s, store.KindSubject, "missing", entity.JSON(nil), false)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestList(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	_, err := s.InsertSubject(ctx, store.Subject{Name: "Maths", Tags: []string{"core"}})
	require.NoError(t, err)
	_, err = s.InsertSubject(ctx, store.Subject{Name: "Art"})
	require.NoError(t, err)

	all, err := entity.List(ctx, s, store.KindSubject, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	tagged, err := entity.List(ctx, s, store.KindSubject, entity.Value(store.SubjectFilter{Tags: []string{"COR"}}))
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "Maths", tagged.([]store.Subject)[0].Name)

	_, err = entity.List(ctx, s, store.KindExamInstance, nil)
	assert.ErrorIs(t, err, entity.ErrMissingExam)

	tags, err := entity.List(ctx, s, store.KindTag, entity.JSON([]byte(`{"kind": "subject"}`)))
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestTagKind(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	v, err := entity.Insert(ctx, s, store.KindTag, entity.JSON([]byte(`{"text": "algebra"}`)))
	require.NoError(t, err)
	tag := v.(*store.Tag)

	again, err := entity.Insert(ctx, s, store.KindTag, entity.JSON([]byte(`{"text": "algebra"}`)))
	require.NoError(t, err)
	assert.Equal(t, tag.ID, again.(*store.Tag).ID)

	_, after, err := entity.Update(ctx, s, store.KindTag, tag.ID, entity.JSON([]byte(`{"text": "linear algebra"}`)), false)
	require.NoError(t, err)
	assert.Equal(t, "linear algebra", after.(*store.Tag).Text)
}

func TestUnknownKind(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	_, err := entity.Get(ctx, s, "widget", "x")
	assert.ErrorIs(t, err, store.ErrUnknownKind)
	_, err = entity.Insert(ctx, s, store.KindAnswer, entity.JSON(nil))
	assert.ErrorIs(t, err, store.ErrUnknownKind)
}

func ptr[T any](v T) *T { return &v }

func TestID(t *testing.T) {
	assert.Equal(t, "s1", entity.ID(&store.Subject{ID: "s1"}))
	assert.Equal(t, "", entity.ID((*store.Question)(nil)))
	assert.Equal(t, "", entity.ID(nil))
}
