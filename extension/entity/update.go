// update.go implements "<kind> update". The patch is read like add's input;
// fields absent from it are left alone.

package entity

import (
	"fmt"

	"github.com/jpl-au/exambank/cmd"
	"github.com/jpl-au/exambank/extension"
	"github.com/jpl-au/exambank/internal/diff"
	"github.com/jpl-au/exambank/internal/entity"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/jpl-au/exambank/internal/render"
	"github.com/jpl-au/exambank/internal/store"
	"github.com/spf13/cobra"
)

func (e *Extension) newUpdateCmd(k store.Kind) *cobra.Command {
	c := &cobra.Command{
		Use:   "update <id>",
		Short: fmt.Sprintf("Update a %s", k),
		Long: fmt.Sprintf(`Update a %s from a YAML or JSON patch read from --file or stdin.

Fields absent from the patch are kept. JSON object fields are merged key by
key into the stored object. With --replace, object fields and id lists in
the patch replace the stored values, and absent id lists are cleared.`, k),
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return e.runUpdate(c, k, args[0])
		},
	}
	c.Flags().StringP(extension.FlagFile, "f", "", "Patch file (YAML or JSON)")
	c.Flags().Bool(extension.FlagReplace, false, "Replace objects and id lists instead of merging")
	c.Flags().Bool(extension.FlagDiff, false, "Show a diff of the change")
	return c
}

func (e *Extension) runUpdate(c *cobra.Command, k store.Kind, id string) error {
	replace, _ := c.Flags().GetBool(extension.FlagReplace)
	showDiff, _ := c.Flags().GetBool(extension.FlagDiff)

	before, after, err := entity.Update(c.Context(), e.svc, k, id, fileDecoder(c), replace)

	log.Event("entity:update", "update").
		Author(cmd.Author()).
		Kind(string(k)).
		ID(id).
		Detail("replace", replace).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("update %s %s: %w", k, id, err))
	}

	if showDiff {
		d, err := diff.Entities(before, after, "before", "after")
		if err != nil {
			return cmd.PrintJSONError(err)
		}
		if cmd.JSON() {
			return cmd.PrintJSON(d)
		}
		if !d.Changed() {
			fmt.Fprintln(cmd.Out(), "No changes")
			return nil
		}
		fmt.Fprint(cmd.Out(), d.Format(render.IsTerminal()))
		return nil
	}

	fmt.Fprintf(cmd.Output(), "Updated %s %s\n", k, id)
	return cmd.PrintJSON(after)
}
