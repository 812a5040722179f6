package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTag(t *testing.T) {
	env := newTestEnv(t)
	q := env.add("question", `{"text": "Speed of light?", "type": "numeric"}`)
	st := env.add("student", `{"firstName": "Ada", "lastName": "Lovelace"}`)

	t.Run("assign creates the tag", func(t *testing.T) {
		out := env.run("tag", "assign", "question", q, "optics")
		env.contains(out, `Tagged question `+q+` with "optics"`)

		out = env.run("tag", "ls", "--kind", "question", "--id", q)
		env.contains(out, "optics")
	})

	t.Run("assign is idempotent", func(t *testing.T) {
		env.run("tag", "assign", "question", q, "optics")

		var qs struct {
			Tags []string `json:"tags"`
		}
		env.runJSON(&qs, "question", "show", q)
		assert.Equal(t, []string{"optics"}, qs.Tags)
	})

	t.Run("ls by kind", func(t *testing.T) {
		env.run("tag", "assign", "student", st, "year12")

		out := env.run("tag", "ls", "--kind", "student")
		env.contains(out, "year12")
		assert.NotContains(t, out, "optics")
	})

	t.Run("ls by match", func(t *testing.T) {
		out := env.run("tag", "ls", "--match", "OPT")
		env.contains(out, "optics")
		assert.NotContains(t, out, "year12")

		out = env.run("tag", "ls")
		env.contains(out, "optics")
		env.contains(out, "year12")
	})

	t.Run("add returns the existing tag", func(t *testing.T) {
		first := strings.TrimSpace(env.run("tag", "add", "optics"))
		second := strings.TrimSpace(env.run("tag", "add", "optics"))
		assert.Equal(t, first, second)
	})

	t.Run("rename is seen by every entity", func(t *testing.T) {
		id := strings.TrimSpace(env.run("tag", "add", "optics"))
		env.run("tag", "rename", id, "light")

		out := env.run("tag", "show", id)
		env.contains(out, "light")

		var qs struct {
			Tags []string `json:"tags"`
		}
		env.runJSON(&qs, "question", "show", q)
		assert.Equal(t, []string{"light"}, qs.Tags)
	})

	t.Run("unassign", func(t *testing.T) {
		out := env.run("tag", "unassign", "student", st, "year12")
		env.contains(out, `Removed "year12" from student `+st)

		out = env.run("tag", "ls", "--kind", "student", "--id", st)
		assert.NotContains(t, out, "year12")
	})

	t.Run("rm drops assignments", func(t *testing.T) {
		id := strings.TrimSpace(env.run("tag", "add", "light"))
		env.run("tag", "rm", id)

		var qs struct {
			Tags []string `json:"tags"`
		}
		env.runJSON(&qs, "question", "show", q)
		assert.Empty(t, qs.Tags)

		_, err := env.runErr("tag", "show", id)
		assert.Error(t, err)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := env.runErr("tag", "assign", "instance", "x", "t")
		assert.Error(t, err, "instances cannot be tagged")

		_, err = env.runErr("tag", "assign", "question", "no-such-question", "t")
		assert.Error(t, err)

		_, err = env.runErr("tag", "assign", "question", q, "")
		assert.Error(t, err)

		_, err = env.runErr("tag", "ls", "--kind", "widget")
		assert.Error(t, err)
	})

	t.Run("json", func(t *testing.T) {
		env.run("tag", "assign", "student", st, "honours")

		var res struct {
			Tags []struct {
				ID   string `json:"id"`
				Text string `json:"text"`
			} `json:"tags"`
		}
		env.runJSON(&res, "tag", "ls", "--kind", "student", "--id", st)
		require.Len(t, res.Tags, 1)
		assert.Equal(t, "honours", res.Tags[0].Text)
	})
}
