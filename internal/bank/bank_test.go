package bank_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jpl-au/exambank/extension"
	"github.com/jpl-au/exambank/internal/bank"
	"github.com/jpl-au/exambank/internal/config"
	"github.com/jpl-au/exambank/internal/repo"
	"github.com/jpl-au/exambank/internal/store"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects every event delivered to it.
type recorder struct {
	mu     sync.Mutex
	events []extension.Event
}

func (r *recorder) Name() string                  { return "bank-test-recorder" }
func (r *recorder) Commands() []*cobra.Command    { return nil }
func (r *recorder) MCPTools() []extension.MCPTool { return nil }
func (r *recorder) HandleEvent(_ extension.Context, e extension.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []extension.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []extension.EventType
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}

var rec = &recorder{}

func init() {
	extension.Register(rec)
}

// project creates an initialised bank in a fresh working directory.
func project(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("USERPROFILE", os.Getenv("HOME"))
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, bank.Init(false, "", false, ""))
	return dir
}

func TestNew_NotInitialised(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, err := bank.New("", "")
	assert.ErrorIs(t, err, repo.ErrNotInitialised)

	_, err = bank.New("", t.TempDir())
	assert.ErrorIs(t, err, repo.ErrNotInitialised)
}

func TestNew_ExplicitDir(t *testing.T) {
	dir := project(t)
	t.Chdir(t.TempDir())

	svc, err := bank.New("", dir)
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, filepath.Join(dir, repo.Dir), svc.Dir())
	assert.Equal(t, filepath.Join(dir, repo.Dir, repo.DBFile), svc.DBPath())
}

func TestChangesReachExtensions(t *testing.T) {
	project(t)
	ctx := context.Background()

	svc, err := bank.New("", "")
	require.NoError(t, err)
	defer svc.Close()

	// Nothing is delivered before the context is set.
	_, err = svc.InsertSubject(ctx, store.Subject{Name: "ignored"})
	require.NoError(t, err)
	assert.Empty(t, rec.types())

	cfg, err := config.Load()
	require.NoError(t, err)
	svc.SetExtensionContext(extension.NewContext(svc, svc.DB(), cfg))

	sub, err := svc.InsertSubject(ctx, store.Subject{Name: "Physics"})
	require.NoError(t, err)
	_, err = svc.DeleteSubject(ctx, sub.ID)
	require.NoError(t, err)

	assert.Equal(t, []extension.EventType{"subject:insert", "subject:delete"}, rec.types())
}

func TestConfiguredLimits(t *testing.T) {
	project(t)
	ctx := context.Background()

	local, err := config.LoadScope(config.ScopeLocal)
	require.NoError(t, err)
	require.NoError(t, local.Set("limits.max_tag_length", "4"))
	require.NoError(t, local.Save())

	svc, err := bank.New("", "")
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.GetOrCreateTag(ctx, "too-long")
	assert.ErrorIs(t, err, store.ErrUserError)

	require.NoError(t, local.Set("limits.max_tag_length", "40"))
	require.NoError(t, local.Save())
	require.NoError(t, svc.ReloadConfig())

	_, err = svc.GetOrCreateTag(ctx, "too-long")
	assert.NoError(t, err)
}
