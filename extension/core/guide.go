// guide.go implements "exambank guide". Pages are embedded in the binary;
// a terminal gets them rendered through glamour, a pipe gets the markdown.

package core

import (
	"fmt"

	"github.com/jpl-au/exambank/cmd"
	"github.com/jpl-au/exambank/extension"
	"github.com/jpl-au/exambank/guide"
	"github.com/jpl-au/exambank/internal/config"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/jpl-au/exambank/internal/render"
	"github.com/spf13/cobra"
)

func newGuideCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "guide [topic]",
		Short: "Show the exambank usage guide",
		Long: `Outputs the exambank guide for people and LLMs.

  exambank guide           # main guide
  exambank guide bundle    # export and import
  exambank guide mcp       # the MCP server and its tools`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGuide,
	}
	c.Flags().Bool(extension.FlagRaw, false, "Print markdown without terminal styling")
	return c
}

func runGuide(c *cobra.Command, args []string) error {
	topic := ""
	if len(args) > 0 {
		topic = args[0]
	}
	raw, _ := c.Flags().GetBool(extension.FlagRaw)

	content, err := guide.Get(topic)

	log.Event("core:guide", "read").Author(cmd.Author()).Detail("topic", topic).Write(err)

	if err != nil {
		return cmd.PrintJSONError(err)
	}
	if cmd.JSON() {
		return cmd.PrintJSON(map[string]any{"topic": topic, "content": content, "topics": guide.Topics()})
	}

	style := config.DefaultStyle
	if cfg, err := config.Load(); err == nil {
		style = cfg.Style()
	}
	if err := render.Write(cmd.Out(), content, style, !raw && render.IsTerminal()); err != nil {
		return fmt.Errorf("render guide: %w", err)
	}
	return nil
}
