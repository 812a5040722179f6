// stats.go implements "exambank stats" and "exambank checkpoint".

package core

import (
	"fmt"

	"github.com/jpl-au/exambank/cmd"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/spf13/cobra"
)

func (e *Extension) newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show row counts",
		Args:  cobra.NoArgs,
		RunE:  e.runStats,
	}
}

func (e *Extension) runStats(c *cobra.Command, _ []string) error {
	st, err := e.svc.Stats(c.Context())

	log.Event("core:stats", "read").Author(cmd.Author()).Write(err)

	if err != nil {
		return cmd.PrintJSONError(err)
	}

	w := cmd.Output()
	fmt.Fprintf(w, "Bank:             %s\n", e.svc.DBPath())
	fmt.Fprintf(w, "Subjects:         %d\n", st.Subjects)
	fmt.Fprintf(w, "Questions:        %d\n", st.Questions)
	fmt.Fprintf(w, "Exams:            %d\n", st.Exams)
	fmt.Fprintf(w, "Students:         %d\n", st.Students)
	fmt.Fprintf(w, "Tags:             %d\n", st.Tags)
	fmt.Fprintf(w, "Exam instances:   %d\n", st.ExamInstances)
	fmt.Fprintf(w, "Answers:          %d\n", st.Answers)
	fmt.Fprintf(w, "Exam questions:   %d\n", st.ExamQuestions)
	fmt.Fprintf(w, "Enrolments:       %d\n", st.Enrolments)
	fmt.Fprintf(w, "Tag assignments:  %d\n", st.TagAssignments)
	return cmd.PrintJSON(st)
}

func (e *Extension) newCheckpointCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkpoint",
		Short: "Flush the write-ahead log into the database file",
		Long: `Flush the write-ahead log into the database file, so the .db file alone
holds every committed change. Run before committing or copying a bank.`,
		Args: cobra.NoArgs,
		RunE: e.runCheckpoint,
	}
}

func (e *Extension) runCheckpoint(c *cobra.Command, _ []string) error {
	err := e.svc.Checkpoint(c.Context())

	log.Event("core:checkpoint", "checkpoint").Author(cmd.Author()).Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("checkpoint: %w", err))
	}
	fmt.Fprintln(cmd.Output(), "Checkpointed", e.svc.DBPath())
	return cmd.PrintJSON(map[string]any{"path": e.svc.DBPath(), "checkpointed": true})
}
