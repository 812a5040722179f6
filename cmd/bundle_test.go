package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counts struct {
	Subjects      int `json:"subjects"`
	Questions     int `json:"questions"`
	Exams         int `json:"exams"`
	Students      int `json:"students"`
	Tags          int `json:"tags"`
	ExamInstances int `json:"examInstances"`
	Answers       int `json:"answers"`
}

func TestBundle(t *testing.T) {
	src := newTestEnv(t)
	f := newFixture(src)
	src.runStdin(fmt.Sprintf(`{"examInstanceId": %q, "studentId": %q, "scanNumber": 1, "answerObject": {"q1": "A"}}`,
		f.instance, f.ada), "answer", "put")

	var want counts
	src.runJSON(&want, "stats")

	t.Run("export to file", func(t *testing.T) {
		out := src.run("export", "bank.yaml")
		src.contains(out, "Exported")
		require.FileExists(t, filepath.Join(src.dir, "bank.yaml"))

		_, err := src.runErr("export", "bank.yaml")
		assert.Error(t, err, "refuses to overwrite without --force")
		src.run("export", "bank.yaml", "--force")
	})

	t.Run("export to stdout", func(t *testing.T) {
		out := src.run("export")
		src.contains(out, "Physics")
		src.contains(out, "Speed of light?")
	})

	data, err := os.ReadFile(filepath.Join(src.dir, "bank.yaml"))
	require.NoError(t, err)

	t.Run("dry run needs no bank", func(t *testing.T) {
		dst := newBareEnv(t)
		p := dst.write("bank.yaml", string(data))

		out := dst.run("import", p, "--dry-run")
		dst.contains(out, "Would import")
		dst.contains(out, "2 questions")
		assert.NoDirExists(t, filepath.Join(dst.dir, ".exambank"))
	})

	t.Run("import into a new bank", func(t *testing.T) {
		dst := newTestEnv(t)
		p := dst.write("bank.yaml", string(data))

		out := dst.run("import", p)
		dst.contains(out, "Imported")

		var got counts
		dst.runJSON(&got, "stats")
		assert.Equal(t, want, got)

		out = dst.run("question", "ls")
		dst.contains(out, "Speed of light?")
		assert.NotContains(t, out, f.q1, "imported entities get new ids")
	})

	t.Run("import from stdin merges", func(t *testing.T) {
		dst := newTestEnv(t)
		dst.run("tag", "add", "science")

		dst.runStdin(string(data), "import", "-")
		dst.runStdin(string(data), "import", "-")

		var got counts
		dst.runJSON(&got, "stats")
		assert.Equal(t, 2*want.Subjects, got.Subjects)
		assert.Equal(t, 2*want.Answers, got.Answers)
		assert.Equal(t, want.Tags, got.Tags, "tags are matched by text")
	})

	t.Run("bad bundle writes nothing", func(t *testing.T) {
		dst := newTestEnv(t)
		p := dst.write("bad.yaml", `
version: 1
subjects:
  - id: s1
    name: Physics
questions:
  - id: q1
    text: Orphan
    type: open
    subjectId: missing
`)
		_, err := dst.runErr("import", p)
		assert.Error(t, err)

		var got counts
		dst.runJSON(&got, "stats")
		assert.Zero(t, got.Subjects)
	})
}
