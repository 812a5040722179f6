// rm.go implements "<kind> rm". Deletes are permanent and cascade to
// dependent rows: tag assignments, instances of a deleted exam, answers of a
// deleted instance or student.

package entity

import (
	"errors"
	"fmt"

	"github.com/jpl-au/exambank/cmd"
	"github.com/jpl-au/exambank/extension"
	"github.com/jpl-au/exambank/internal/entity"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/jpl-au/exambank/internal/store"
	"github.com/spf13/cobra"
)

// RmResult is the JSON output of rm.
type RmResult struct {
	Kind    store.Kind `json:"kind"`
	ID      string     `json:"id,omitempty"`
	ExamID  string     `json:"examId,omitempty"`
	Deleted bool       `json:"deleted"`
}

func (e *Extension) newRmCmd(k store.Kind) *cobra.Command {
	c := &cobra.Command{
		Use:   "rm <id>",
		Short: fmt.Sprintf("Delete a %s", k),
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return e.runRm(c, k, args)
		},
	}
	if k == store.KindExamInstance {
		c.Use = "rm [<id> | --exam <exam>]"
		c.Long = "Delete one instance by id, or every instance of an exam with --exam."
		c.Args = cobra.MaximumNArgs(1)
		c.Flags().String(extension.FlagExam, "", "Delete every instance of this exam")
	}
	return c
}

func (e *Extension) runRm(c *cobra.Command, k store.Kind, args []string) error {
	examID := ""
	if k == store.KindExamInstance {
		examID, _ = c.Flags().GetString(extension.FlagExam)
		if (len(args) == 0) == (examID == "") {
			return cmd.PrintJSONError(errors.New("requires either an instance id or --exam"))
		}
	}
	if examID != "" {
		return e.runRmInstances(c, examID)
	}

	id := args[0]
	err := entity.Delete(c.Context(), e.svc, k, id)

	log.Event("entity:rm", "delete").
		Author(cmd.Author()).
		Kind(string(k)).
		ID(id).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("rm %s %s: %w", k, id, err))
	}
	fmt.Fprintf(cmd.Output(), "Deleted %s %s\n", k, id)
	return cmd.PrintJSON(RmResult{Kind: k, ID: id, Deleted: true})
}

func (e *Extension) runRmInstances(c *cobra.Command, examID string) error {
	ok, err := e.svc.DeleteExamInstances(c.Context(), examID)
	if err == nil && !ok {
		err = fmt.Errorf("no instances of exam %s: %w", examID, store.ErrNotFound)
	}

	log.Event("entity:rm", "delete").
		Author(cmd.Author()).
		Kind(string(store.KindExamInstance)).
		Detail("exam", examID).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("rm instances: %w", err))
	}
	fmt.Fprintf(cmd.Output(), "Deleted instances of exam %s\n", examID)
	return cmd.PrintJSON(RmResult{Kind: store.KindExamInstance, ExamID: examID, Deleted: true})
}
