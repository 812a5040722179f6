// db.go implements the "exambank db" command: listing the banks in a
// project and switching a bank between local (gitignored) and shared.
// It only edits .exambank/.gitignore and never opens a database.

package core

import (
	"fmt"
	"path/filepath"

	"github.com/jpl-au/exambank/cmd"
	"github.com/jpl-au/exambank/extension"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/jpl-au/exambank/internal/repo"
	"github.com/spf13/cobra"
)

func newDBCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "db [name]",
		Short: "List banks or change their local/shared status",
		Long: `List banks or change their local/shared status.

  exambank db                  # list all banks
  exambank db --local          # mark the default bank as local
  exambank db term2 --local    # mark exambank-term2.db as local
  exambank db term2 --share    # mark it as shared
  exambank db term2            # show its status

Local banks are listed in .exambank/.gitignore and not committed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDB,
	}
	c.Flags().BoolP(extension.FlagLocal, "l", false, "Mark bank as local")
	c.Flags().BoolP(extension.FlagShare, "s", false, "Mark bank as shared")
	c.MarkFlagsMutuallyExclusive(extension.FlagLocal, extension.FlagShare)
	return c
}

func runDB(c *cobra.Command, args []string) error {
	local, _ := c.Flags().GetBool(extension.FlagLocal)
	share, _ := c.Flags().GetBool(extension.FlagShare)

	// repo functions take the .exambank directory itself.
	dir := cmd.Dir()
	bankDir := ""
	if dir != "" {
		bankDir = filepath.Join(dir, repo.Dir)
	}

	if len(args) == 0 && !local && !share {
		dbs, err := repo.ListDBs(bankDir)

		log.Event("core:db", "list").
			Author(cmd.Author()).
			Detail("dir", dir).
			Write(err)

		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("db list: %w", err))
		}
		w := cmd.Output()
		if len(dbs) == 0 {
			fmt.Fprintln(w, "No banks found")
		}
		for _, db := range dbs {
			fmt.Fprintf(w, "%s  %s\n", db.File, status(db.Local))
		}
		return cmd.PrintJSON(dbs)
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	var err error
	action := "status"
	ignored := local
	switch {
	case local:
		action = "ignore"
		err = repo.IgnoreDB(name, bankDir)
	case share:
		action = "unignore"
		err = repo.UnignoreDB(name, bankDir)
	default:
		ignored, err = repo.IsIgnored(name, bankDir)
	}

	log.Event("core:db", action).
		Author(cmd.Author()).
		Detail("db", name).
		Detail("dir", dir).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("db %s %q: %w", action, name, err))
	}

	file := repo.DBFileName(name)
	fmt.Fprintf(cmd.Output(), "%s: %s\n", file, status(ignored))
	return cmd.PrintJSON(map[string]any{"file": file, "local": ignored})
}

func status(local bool) string {
	if local {
		return "local"
	}
	return "shared"
}
