package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	env := newBareEnv(t)

	out := env.run("init")
	env.contains(out, "Initialised exam bank")

	assert.DirExists(t, filepath.Join(env.dir, ".exambank"))
	assert.FileExists(t, filepath.Join(env.dir, ".exambank", "exambank.db"))
	// init does not write config; that is "exambank config".
	assert.NoFileExists(t, filepath.Join(env.dir, ".exambank", "config.yaml"))
}

func TestInit_AlreadyInitialised(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.runErr("init")
	assert.Error(t, err)
}

func TestInit_Force(t *testing.T) {
	env := newTestEnv(t)
	id := env.add("subject", `{"name": "Physics"}`)

	env.run("init", "--force")

	assert.FileExists(t, filepath.Join(env.dir, ".exambank", "exambank.db"))
	_, err := env.runErr("subject", "show", id)
	assert.Error(t, err, "force reinit should drop existing data")
}

func TestInit_DirAndLocalIncompatible(t *testing.T) {
	env := newBareEnv(t)

	out, err := env.runErr("init", "--dir", t.TempDir(), "--local")
	assert.Error(t, err)
	assert.Contains(t, out, "cannot use --local with --dir")
}

func TestInit_Dir(t *testing.T) {
	env := newBareEnv(t)
	target := t.TempDir()

	env.run("init", "--dir", target)

	assert.FileExists(t, filepath.Join(target, ".exambank", "exambank.db"))
	assert.NoFileExists(t, filepath.Join(env.dir, ".exambank", "exambank.db"))

	// Commands reach the bank through --dir.
	env.runStdin(`{"name": "Chemistry"}`, "subject", "add", "--dir", target)
	out := env.run("subject", "ls", "--dir", target)
	env.contains(out, "Chemistry")

	_, err := env.runErr("subject", "ls")
	assert.Error(t, err, "the current directory has no bank")
}

func TestInit_DB(t *testing.T) {
	t.Run("creates named bank", func(t *testing.T) {
		env := newBareEnv(t)

		out := env.run("init", "--db", "term2")
		env.contains(out, "exambank-term2.db")
		assert.FileExists(t, filepath.Join(env.dir, ".exambank", "exambank-term2.db"))
	})

	t.Run("commands use the selected bank", func(t *testing.T) {
		env := newTestEnv(t)
		env.run("init", "--db", "other")

		env.runStdin(`{"name": "Default only"}`, "subject", "add")
		env.runStdin(`{"name": "Other only"}`, "subject", "add", "--db", "other")

		out := env.run("subject", "ls")
		env.contains(out, "Default only")
		assert.NotContains(t, out, "Other only")

		out = env.run("subject", "ls", "--db", "other")
		env.contains(out, "Other only")
		assert.NotContains(t, out, "Default only")
	})
}

func TestUninitialised(t *testing.T) {
	env := newBareEnv(t)

	_, err := env.runErr("subject", "ls")
	require.Error(t, err)

	// Commands that never open a bank still work.
	env.run("version")
	env.run("config")
	env.contains(env.run("guide"), "# exambank")
	env.contains(env.run("guide", "bundle"), "# Bundles")
	_, err = env.runErr("guide", "nope")
	assert.Error(t, err)
}
