/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// root.go defines the root command and CLI execution entry point.
//
// The bank is opened lazily in PersistentPreRunE, and only for commands
// that need it, so init, config and version work before a bank exists.

package cmd

import (
	"fmt"
	"os"

	"github.com/jpl-au/exambank/internal/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "exambank",
	Short: "Embedded store for subjects, questions, exams and students",
	Long: `exambank keeps subjects, questions, exams, students, generated exam
instances, scanned answers and tags in a SQLite database under .exambank/.

Every entity can be listed, shown, added, updated and removed from the
command line, and the same operations are served to LLM clients over MCP
with "exambank serve".`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if JSON() {
			cmd.SilenceErrors = true
		}
		if author == "" {
			author = detectAuthor()
		}
		if !cmd.HasParent() || noStoreCommands[topLevelCmdName(cmd)] {
			return nil
		}
		if err := initExtensions(); err != nil {
			return PrintJSONError(err)
		}
		return nil
	},
}

// topLevelCmdName returns the name of the direct child of root that cmd
// belongs to. For "exambank tag assign ..." it returns "tag".
func topLevelCmdName(cmd *cobra.Command) string {
	for cmd.HasParent() && cmd.Parent().HasParent() {
		cmd = cmd.Parent()
	}
	return cmd.Name()
}

// Execute runs the root command and handles process lifecycle: the audit
// log is opened first, extensions register their commands, and the bank
// is closed (checkpointing its WAL) before exit. Exit code 1 indicates error.
func Execute() {
	if err := log.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit log unavailable: %v\n", err)
	}
	defer log.Close()

	registerExtensions()
	err := rootCmd.Execute()

	if extService != nil {
		if closeErr := extService.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: closing bank: %v\n", closeErr)
		}
	}

	if err != nil {
		log.Close()
		os.Exit(1)
	}
}

// RootCmd returns the root command for testing and extension access.
func RootCmd() *cobra.Command {
	return rootCmd
}
