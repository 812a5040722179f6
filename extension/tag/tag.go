// Package tag provides the tag extension.
// It registers the tag command with subcommands ls, show, add, rename, rm,
// assign and unassign.
package tag

import (
	"fmt"

	"github.com/jpl-au/exambank/cmd"
	"github.com/jpl-au/exambank/extension"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/jpl-au/exambank/internal/service"
	"github.com/jpl-au/exambank/internal/store"
	"github.com/jpl-au/exambank/internal/tag"
	"github.com/spf13/cobra"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the tag extension.
type Extension struct {
	svc service.Service
}

var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
)

// Name returns "tag".
func (e *Extension) Name() string { return "tag" }

// Init receives the shared service from the extension context.
func (e *Extension) Init(ctx extension.Context) error {
	e.svc = ctx.Service()
	return nil
}

// Commands returns the tag command.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newTagCmd(),
	}
}

// MCPTools returns nil - MCP tagging tools are in internal/mcp.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}

func (e *Extension) newTagCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags",
		Long: `Manage tags and their assignment to subjects, questions, exams and students.

Tags are identified by their text, which is unique across the bank.
Assigning a tag that does not exist creates it.`,
	}

	ls := &cobra.Command{
		Use:   "ls",
		Short: "List tags",
		Long: `List tags. With --kind, only tags on that kind of entity are listed,
narrowed to the entities given with --id. Otherwise --match lists tags whose
text contains a pattern (case-insensitive).`,
		Args: cobra.NoArgs,
		RunE: e.runLs,
	}
	ls.Flags().String(extension.FlagKind, "", "Entity kind (subject, question, exam, student)")
	ls.Flags().StringSlice(extension.FlagID, nil, "Entity ids (with --kind)")
	ls.Flags().StringSlice(extension.FlagMatch, nil, "Tag text contains")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a tag",
		Args:  cobra.ExactArgs(1),
		RunE:  e.runShow,
	}

	add := &cobra.Command{
		Use:   "add <text>",
		Short: "Create a tag (or return the existing one)",
		Args:  cobra.ExactArgs(1),
		RunE:  e.runAdd,
	}

	rename := &cobra.Command{
		Use:   "rename <id> <text>",
		Short: "Change the text of a tag",
		Args:  cobra.ExactArgs(2),
		RunE:  e.runRename,
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a tag and all its assignments",
		Args:  cobra.ExactArgs(1),
		RunE:  e.runRm,
	}

	assign := &cobra.Command{
		Use:   "assign <kind> <id> <text>",
		Short: "Tag an entity",
		Args:  cobra.ExactArgs(3),
		RunE:  e.runAssign,
	}

	unassign := &cobra.Command{
		Use:   "unassign <kind> <id> <text>",
		Short: "Remove a tag from an entity",
		Args:  cobra.ExactArgs(3),
		RunE:  e.runUnassign,
	}

	c.AddCommand(ls, show, add, rename, rm, assign, unassign)
	return c
}

func (e *Extension) runLs(c *cobra.Command, _ []string) error {
	f := &store.TagFilter{}
	if kind, _ := c.Flags().GetString(extension.FlagKind); kind != "" {
		k, err := store.ParseKind(kind)
		if err != nil {
			return cmd.PrintJSONError(err)
		}
		f.Kind = k
	}
	if c.Flags().Changed(extension.FlagID) {
		f.IDs, _ = c.Flags().GetStringSlice(extension.FlagID)
	}
	if c.Flags().Changed(extension.FlagMatch) {
		f.Text, _ = c.Flags().GetStringSlice(extension.FlagMatch)
	}

	result, err := tag.List(c.Context(), cmd.Output(), e.svc, f)

	log.Event("tag:ls", "list").
		Author(cmd.Author()).
		Kind(string(f.Kind)).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("ls tags: %w", err))
	}
	return cmd.PrintJSON(result)
}

func (e *Extension) runShow(c *cobra.Command, args []string) error {
	id := args[0]
	t, err := e.svc.Tag(c.Context(), id)
	if err == nil && t == nil {
		err = fmt.Errorf("tag %s: %w", id, store.ErrNotFound)
	}

	log.Event("tag:show", "read").
		Author(cmd.Author()).
		Kind(string(store.KindTag)).
		ID(id).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(err)
	}
	fmt.Fprintf(cmd.Output(), "%s  %s\n", t.ID, t.Text)
	return cmd.PrintJSON(t)
}

func (e *Extension) runAdd(c *cobra.Command, args []string) error {
	text := args[0]

	result, err := tag.Create(c.Context(), cmd.Output(), e.svc, text)

	log.Event("tag:add", "create").
		Author(cmd.Author()).
		Kind(string(store.KindTag)).
		Detail("tag", text).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("add tag %q: %w", text, err))
	}
	return cmd.PrintJSON(result)
}

func (e *Extension) runRename(c *cobra.Command, args []string) error {
	id, text := args[0], args[1]

	result, err := tag.Rename(c.Context(), cmd.Output(), e.svc, id, text)

	log.Event("tag:rename", "update").
		Author(cmd.Author()).
		Kind(string(store.KindTag)).
		ID(id).
		Detail("tag", text).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("rename tag %s: %w", id, err))
	}
	return cmd.PrintJSON(result)
}

func (e *Extension) runRm(c *cobra.Command, args []string) error {
	id := args[0]

	result, err := tag.Delete(c.Context(), cmd.Output(), e.svc, id)

	log.Event("tag:rm", "delete").
		Author(cmd.Author()).
		Kind(string(store.KindTag)).
		ID(id).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("rm tag %s: %w", id, err))
	}
	return cmd.PrintJSON(result)
}

func (e *Extension) runAssign(c *cobra.Command, args []string) error {
	return e.runSet(c, args, true)
}

func (e *Extension) runUnassign(c *cobra.Command, args []string) error {
	return e.runSet(c, args, false)
}

// runSet assigns or unassigns tag text on the entity named by args.
func (e *Extension) runSet(c *cobra.Command, args []string, assign bool) error {
	k, err := store.ParseKind(args[0])
	if err != nil {
		return cmd.PrintJSONError(err)
	}
	id, text := args[1], args[2]

	op, action := tag.Assign, "assign"
	if !assign {
		op, action = tag.Unassign, "unassign"
	}

	result, err := op(c.Context(), cmd.Output(), e.svc, k, id, text)

	log.Event("tag:"+action, action).
		Author(cmd.Author()).
		Kind(string(k)).
		ID(id).
		Detail("tag", text).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("%s %q on %s %s: %w", action, text, k, id, err))
	}
	return cmd.PrintJSON(result)
}
