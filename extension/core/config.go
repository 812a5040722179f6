// config.go implements the "exambank config" command.
//
// Reads show the effective value (local over global). Writes go to the
// local file unless --global is given.

package core

import (
	"fmt"
	"slices"

	"github.com/jpl-au/exambank/cmd"
	"github.com/jpl-au/exambank/extension"
	"github.com/jpl-au/exambank/internal/config"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "config [key] [value]",
		Short: "View or set config values",
		Long: `View or set config values.

  exambank config                              # show effective config
  exambank config render.style                 # show one value
  exambank config limits.max_tag_length 64     # set in .exambank/config.yaml
  exambank config author.name "Ada Lovelace" --global

Keys:
  author.name, author.email     recorded in the audit log
  render.style                  glamour style for show (dark, light, notty, ...)
  limits.max_tag_length         longest tag text accepted
  limits.max_payload            largest JSON payload accepted, in bytes

Configuration locations:
  Global: ~/.exambank/config.yaml
  Local:  .exambank/config.yaml (overrides global)`,
		Args: cobra.MaximumNArgs(2),
		RunE: runConfig,
	}
	c.Flags().Bool(extension.FlagGlobal, false, "Read or write the global config only")
	return c
}

func runConfig(c *cobra.Command, args []string) error {
	global, _ := c.Flags().GetBool(extension.FlagGlobal)
	scope, scopeName := config.ScopeLocal, "local"
	if global {
		scope, scopeName = config.ScopeGlobal, "global"
	}

	var cfg *config.Config
	var err error
	if len(args) == 2 || global {
		cfg, err = config.LoadScope(scope)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("config load: %w", err))
	}

	switch len(args) {
	case 0:
		all := cfg.All()
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(cmd.Output(), "%s: %s\n", k, all[k])
		}
		log.Event("core:config", "list").Author(cmd.Author()).Write(nil)
		return cmd.PrintJSON(all)

	case 1:
		v, err := cfg.Get(args[0])
		log.Event("core:config", "get").Author(cmd.Author()).Detail("key", args[0]).Write(err)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("config get %q: %w", args[0], err))
		}
		fmt.Fprintln(cmd.Output(), v)
		return cmd.PrintJSON(map[string]string{args[0]: v})
	}

	key, value := args[0], args[1]
	if err := cfg.Set(key, value); err != nil {
		log.Event("core:config", "set").Author(cmd.Author()).Detail("key", key).Write(err)
		return cmd.PrintJSONError(fmt.Errorf("config set %q: %w", key, err))
	}

	err = cfg.Save()
	log.Event("core:config", "set").Author(cmd.Author()).Detail("key", key).Detail("scope", scopeName).Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("config save: %w", err))
	}
	fmt.Fprintf(cmd.Output(), "%s = %s (%s)\n", key, value, scopeName)
	return cmd.PrintJSON(map[string]string{"key": key, "value": value, "scope": scopeName})
}
