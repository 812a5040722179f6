// log.go implements "exambank log", which prints the most recent audit log
// entries for the current project.

package core

import (
	"fmt"
	"time"

	"github.com/jpl-au/exambank/cmd"
	"github.com/jpl-au/exambank/extension"
	"github.com/jpl-au/exambank/internal/duration"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/spf13/cobra"
)

func (e *Extension) newLogCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "log",
		Short: "Show recent audit log entries",
		Long: `Show recent audit log entries for this project, newest first.

Every command, MCP tool call and committed store change is recorded in
~/.exambank/log/exambank-log.db. Use --since to limit the listing to
recent activity, e.g. --since 7d.`,
		Args: cobra.NoArgs,
		RunE: e.runLog,
	}
	c.Flags().IntP(extension.FlagLimit, "n", 20, "Number of entries")
	c.Flags().String(extension.FlagSince, "", "Only entries newer than this (12h, 7d, 4w, 3m)")
	return c
}

func (e *Extension) runLog(c *cobra.Command, _ []string) error {
	n, _ := c.Flags().GetInt(extension.FlagLimit)
	if n <= 0 {
		return cmd.PrintJSONError(fmt.Errorf("limit must be > 0, got %d", n))
	}

	var cutoff int64
	if since, _ := c.Flags().GetString(extension.FlagSince); since != "" {
		var err error
		if cutoff, err = duration.Cutoff(since, time.Now()); err != nil {
			return cmd.PrintJSONError(err)
		}
	}

	entries, err := log.Recent(n)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("read log: %w", err))
	}
	// Newest first, so everything after the first old entry is older still.
	for i, en := range entries {
		if en.Start < cutoff {
			entries = entries[:i]
			break
		}
	}

	w := cmd.Output()
	for _, en := range entries {
		status := "ok"
		if !en.Success {
			status = "error: " + en.Error
		}
		target := en.Kind
		if en.ID != "" {
			target += " " + en.ID
		}
		fmt.Fprintf(w, "%s  %-8s %-22s %-10s %s  %s\n",
			time.Unix(en.Start, 0).Format(time.DateTime), en.Author, en.Source, en.Action, target, status)
	}
	return cmd.PrintJSON(entries)
}
