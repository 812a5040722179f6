package render_test

import (
	"bytes"
	"testing"

	"github.com/jpl-au/exambank/internal/render"
	"github.com/jpl-au/exambank/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown_Question(t *testing.T) {
	sub := "s1"
	md, err := render.Markdown(&store.Question{
		ID:             "q1",
		Text:           "What is 2+2?",
		Type:           "numeric",
		QuestionObject: store.Object{"prompt": "2+2"},
		AnswerObject:   store.Object{"value": 4.0},
		SubjectID:      &sub,
		Tags:           []string{"arithmetic"},
	})
	require.NoError(t, err)
	assert.Contains(t, md, "# What is 2+2?")
	assert.Contains(t, md, "- **Subject:** `s1`")
	assert.Contains(t, md, "- **Tags:** arithmetic")
	assert.Contains(t, md, "## Answer object")
	assert.Contains(t, md, `"value": 4`)
}

func TestMarkdown_ExamKeepsQuestionOrder(t *testing.T) {
	md, err := render.Markdown(store.Exam{ID: "e1", QuestionIDs: []string{"q2", "q1"}})
	require.NoError(t, err)
	assert.Contains(t, md, "# (unnamed exam)")
	assert.Contains(t, md, "## Questions (2)\n\n1. `q2`\n2. `q1`\n")
}

func TestMarkdown_Unknown(t *testing.T) {
	_, err := render.Markdown(42)
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	var plain bytes.Buffer
	require.NoError(t, render.Write(&plain, "# Title\n", "dark", false))
	assert.Equal(t, "# Title\n", plain.String())

	var styled bytes.Buffer
	require.NoError(t, render.Write(&styled, "# Title\n", "notty", true))
	assert.Contains(t, styled.String(), "Title")
	assert.NotEqual(t, "# Title\n", styled.String())
}

func TestLine(t *testing.T) {
	num := "S-42"
	assert.Equal(t, "st1  Curie, Marie (S-42)",
		render.Line(store.Student{ID: "st1", FirstName: "Marie", LastName: "Curie", StudentID: &num}))
	assert.Equal(t, "e1  (unnamed exam)", render.Line(store.Exam{ID: "e1"}))
	assert.Equal(t, "q1  [mc] Pick one", render.Line(store.Question{ID: "q1", Type: "mc", Text: "Pick one"}))
}
