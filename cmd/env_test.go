// The cmd/ package holds CLI integration tests that exercise the full stack:
// command parsing -> extension -> service -> store -> SQLite.
//
// Each test builds the binary once and runs it in a fresh directory with
// HOME pointed at a temp dir, so the global config and the audit log never
// touch the real home directory.

package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	binaryPath string
	buildOnce  sync.Once
	buildErr   error
)

// buildBinary compiles the exambank binary once for all tests.
func buildBinary(t *testing.T) string {
	t.Helper()

	buildOnce.Do(func() {
		tmpDir, err := os.MkdirTemp("", "exambank-test-bin-*")
		if err != nil {
			buildErr = err
			return
		}

		binaryName := "exambank"
		if os.PathSeparator == '\\' {
			binaryName = "exambank.exe"
		}
		binaryPath = filepath.Join(tmpDir, binaryName)

		// Project root is the parent of cmd/.
		projectRoot := filepath.Dir(mustGetwd())

		cmd := exec.Command("go", "build", "-o", binaryPath, ".")
		cmd.Dir = projectRoot
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = &buildError{err: err, output: string(out)}
			return
		}
	})

	if buildErr != nil {
		t.Fatalf("failed to build binary: %v", buildErr)
	}
	return binaryPath
}

type buildError struct {
	err    error
	output string
}

func (e *buildError) Error() string {
	return e.err.Error() + "\n" + e.output
}

func mustGetwd() string {
	dir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return dir
}

// testEnv holds test environment state.
type testEnv struct {
	t      *testing.T
	dir    string
	home   string
	binary string
}

// newTestEnv creates a temporary directory with an initialised bank.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newBareEnv(t)
	env.run("init")
	return env
}

// newBareEnv creates a temporary directory without a bank.
func newBareEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		t:      t,
		dir:    t.TempDir(),
		home:   t.TempDir(),
		binary: buildBinary(t),
	}
}

func (e *testEnv) command(stdin string, args ...string) *exec.Cmd {
	cmd := exec.Command(e.binary, args...)
	cmd.Dir = e.dir
	cmd.Env = append(os.Environ(), "HOME="+e.home, "USERPROFILE="+e.home)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	return cmd
}

// run executes exambank with the given args and returns its output.
func (e *testEnv) run(args ...string) string {
	e.t.Helper()
	out, err := e.runErr(args...)
	if err != nil {
		e.t.Fatalf("exambank %v failed: %v\noutput: %s", args, err, out)
	}
	return out
}

// runErr executes exambank and returns combined output and any error.
func (e *testEnv) runErr(args ...string) (string, error) {
	e.t.Helper()
	out, err := e.command("", args...).CombinedOutput()
	return string(out), err
}

// runStdin executes exambank with stdin input.
func (e *testEnv) runStdin(input string, args ...string) string {
	e.t.Helper()
	out, err := e.runStdinErr(input, args...)
	if err != nil {
		e.t.Fatalf("exambank %v failed: %v\noutput: %s", args, err, out)
	}
	return out
}

// runStdinErr executes exambank with stdin input and returns any error.
func (e *testEnv) runStdinErr(input string, args ...string) (string, error) {
	e.t.Helper()
	out, err := e.command(input, args...).CombinedOutput()
	return string(out), err
}

// runJSON executes exambank with --json and decodes stdout into v.
func (e *testEnv) runJSON(v any, args ...string) {
	e.t.Helper()
	cmd := e.command("", append(args, "--json")...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	require.NoError(e.t, err, "exambank %v: %s%s", args, out, stderr.String())
	require.NoError(e.t, json.Unmarshal(out, v), "decode %q", out)
}

// add inserts an entity of kind from doc and returns its new id.
func (e *testEnv) add(kind, doc string) string {
	e.t.Helper()
	id := strings.TrimSpace(e.runStdin(doc, kind, "add"))
	require.NotEmpty(e.t, id)
	return id
}

// contains checks if output contains expected string.
func (e *testEnv) contains(output, expected string) {
	e.t.Helper()
	assert.Contains(e.t, output, expected)
}

// equals checks if output equals expected string (trimmed).
func (e *testEnv) equals(output, expected string) {
	e.t.Helper()
	assert.Equal(e.t, strings.TrimSpace(expected), strings.TrimSpace(output))
}

// write creates a file in the test directory and returns its path.
func (e *testEnv) write(name, content string) string {
	e.t.Helper()
	p := filepath.Join(e.dir, name)
	require.NoError(e.t, os.WriteFile(p, []byte(content), 0644))
	return p
}
