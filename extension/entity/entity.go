// Package entity provides the commands for subjects, questions, exams,
// students, exam instances and scanned answers.
//
// Every kind with an id gets the same ls, show, add, update and rm
// subcommands; only ls flags differ. Answers have a composite key and their
// own command.
package entity

import (
	"github.com/jpl-au/exambank/cmd"
	"github.com/jpl-au/exambank/extension"
	"github.com/jpl-au/exambank/internal/config"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/jpl-au/exambank/internal/service"
	"github.com/jpl-au/exambank/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the entity extension.
type Extension struct {
	svc service.Service
	cfg *config.Config
}

var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
	_ extension.EventHandler  = (*Extension)(nil)
)

// Name returns "entity".
func (e *Extension) Name() string { return "entity" }

// Init receives the open bank.
func (e *Extension) Init(ctx extension.Context) error {
	e.svc = ctx.Service()
	e.cfg = ctx.Config()
	return nil
}

// Commands returns one command per entity kind.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newKindCmd(store.KindSubject, "subject", "Manage subjects"),
		e.newKindCmd(store.KindQuestion, "question", "Manage questions"),
		e.newKindCmd(store.KindExam, "exam", "Manage exams"),
		e.newKindCmd(store.KindStudent, "student", "Manage students"),
		e.newKindCmd(store.KindExamInstance, "instance", "Manage generated exam instances"),
		e.newAnswerCmd(),
	}
}

// MCPTools returns nil; entity tools are served by internal/mcp.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}

// HandleEvent records every committed change in the audit log, so writes
// made as a side effect (cascades, tag creation) are traceable alongside the
// command that caused them.
func (e *Extension) HandleEvent(_ extension.Context, evt extension.Event) error {
	ev, ok := evt.(extension.ChangeEvent)
	if !ok {
		return nil
	}
	log.Event("store:"+string(ev.Kind), string(ev.Op)).
		Author(cmd.Author()).
		Kind(string(ev.Kind)).
		ID(ev.ID).
		Write(nil)
	return nil
}

func (e *Extension) newKindCmd(k store.Kind, use, short string) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
	}
	c.AddCommand(
		e.newLsCmd(k),
		e.newShowCmd(k),
		e.newAddCmd(k),
		e.newUpdateCmd(k),
		e.newRmCmd(k),
	)
	return c
}

// style returns the configured glamour style.
func (e *Extension) style() string {
	if e.cfg == nil {
		return config.DefaultStyle
	}
	return e.cfg.Style()
}
