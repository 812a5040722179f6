// show.go implements "<kind> show". On a terminal the entity is rendered
// as markdown through glamour; --raw or a pipe prints the markdown itself.

package entity

import (
	"fmt"

	"github.com/jpl-au/exambank/cmd"
	"github.com/jpl-au/exambank/extension"
	"github.com/jpl-au/exambank/internal/entity"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/jpl-au/exambank/internal/render"
	"github.com/jpl-au/exambank/internal/store"
	"github.com/spf13/cobra"
)

func (e *Extension) newShowCmd(k store.Kind) *cobra.Command {
	c := &cobra.Command{
		Use:   "show <id>",
		Short: fmt.Sprintf("Show a %s", k),
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return e.runShow(c, k, args[0])
		},
	}
	c.Flags().Bool(extension.FlagRaw, false, "Print markdown without terminal styling")
	return c
}

func (e *Extension) runShow(c *cobra.Command, k store.Kind, id string) error {
	raw, _ := c.Flags().GetBool(extension.FlagRaw)

	v, err := entity.Get(c.Context(), e.svc, k, id)

	log.Event("entity:show", "read").
		Author(cmd.Author()).
		Kind(string(k)).
		ID(id).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("show %s %s: %w", k, id, err))
	}
	if cmd.JSON() {
		return cmd.PrintJSON(v)
	}

	md, err := render.Markdown(v)
	if err != nil {
		return err
	}
	return render.Write(cmd.Out(), md, e.style(), !raw && render.IsTerminal())
}
