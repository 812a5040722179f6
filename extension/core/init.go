// init.go implements the "exambank init" command.
//
// Init runs before a bank exists and creates the database with its schema.
// It does not write config; that is "exambank config".

package core

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jpl-au/exambank/cmd"
	"github.com/jpl-au/exambank/extension"
	"github.com/jpl-au/exambank/internal/bank"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/jpl-au/exambank/internal/repo"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "init",
		Short: "Initialise a new exam bank",
		Long: `Creates a .exambank/exambank.db database in the current directory.

Use --db to create additional banks:
  exambank init --db term2    # creates .exambank/exambank-term2.db

Use --dir to create in a different directory:
  exambank init --dir /path/to/project

Use --local to keep the bank out of git:
  exambank init --db scratch --local

Use --force to replace an existing bank. Its data is lost.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}
	c.Flags().BoolP(extension.FlagLocal, "l", false, "Mark database as local (gitignored)")
	return c
}

func runInit(c *cobra.Command, _ []string) error {
	local, _ := c.Flags().GetBool(extension.FlagLocal)
	db, dir := cmd.DB(), cmd.Dir()

	// --local edits the .gitignore of the current project, not of --dir.
	if local && dir != "" {
		return cmd.PrintJSONError(errors.New("cannot use --local with --dir"))
	}

	err := bank.Init(cmd.Force(), db, local, dir)

	log.Event("core:init", "init").
		Author(cmd.Author()).
		Detail("db", db).
		Detail("dir", dir).
		Detail("local", local).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("init: %w", err))
	}

	loc := filepath.Join(dir, repo.Dir, repo.DBFileName(db))
	fmt.Fprintf(cmd.Output(), "Initialised exam bank in %s\n", loc)
	return cmd.PrintJSON(map[string]any{"path": loc, "local": local})
}
