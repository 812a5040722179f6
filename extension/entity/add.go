// add.go implements "<kind> add", reading the new entity as YAML or JSON
// from a file or stdin.

package entity

import (
	"fmt"

	"github.com/jpl-au/exambank/cmd"
	"github.com/jpl-au/exambank/extension"
	"github.com/jpl-au/exambank/internal/entity"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/jpl-au/exambank/internal/store"
	"github.com/spf13/cobra"
)

// fileDecoder reads the --file flag (stdin when absent) on first use.
func fileDecoder(c *cobra.Command) entity.Decoder {
	file, _ := c.Flags().GetString(extension.FlagFile)
	return func(v any) error {
		return cmd.ReadInput(file, v)
	}
}

func (e *Extension) newAddCmd(k store.Kind) *cobra.Command {
	c := &cobra.Command{
		Use:   "add",
		Short: fmt.Sprintf("Add a %s", k),
		Long: fmt.Sprintf(`Add a %s from a YAML or JSON document.

The document is read from --file, or stdin when --file is omitted or "-".
Field names are those printed by "%s show --json". Any id is ignored and a
new one is assigned; the new id is printed.`, k, cmdName(k)),
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return e.runAdd(c, k)
		},
	}
	c.Flags().StringP(extension.FlagFile, "f", "", "Input file (YAML or JSON)")
	return c
}

func (e *Extension) runAdd(c *cobra.Command, k store.Kind) error {
	v, err := entity.Insert(c.Context(), e.svc, k, fileDecoder(c))

	log.Event("entity:add", "insert").
		Author(cmd.Author()).
		Kind(string(k)).
		ID(entity.ID(v)).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("add %s: %w", k, err))
	}
	fmt.Fprintln(cmd.Output(), entity.ID(v))
	return cmd.PrintJSON(v)
}

// cmdName returns the CLI command for kind k.
func cmdName(k store.Kind) string {
	if k == store.KindExamInstance {
		return "instance"
	}
	return string(k)
}
