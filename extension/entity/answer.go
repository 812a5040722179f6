// answer.go implements the answer command. Answers are keyed by
// (instance, student, scan number) rather than an id, so they do not fit the
// per-kind subcommands.

package entity

import (
	"fmt"
	"strconv"

	"github.com/jpl-au/exambank/cmd"
	"github.com/jpl-au/exambank/extension"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/jpl-au/exambank/internal/render"
	"github.com/jpl-au/exambank/internal/store"
	"github.com/spf13/cobra"
)

func (e *Extension) newAnswerCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "answer",
		Short: "Manage scanned answers",
	}

	ls := &cobra.Command{
		Use:   "ls <instance>",
		Short: "List answers of an exam instance",
		Args:  cobra.ExactArgs(1),
		RunE:  e.runAnswerLs,
	}
	ls.Flags().String(extension.FlagStudent, "", "Only this student")
	ls.Flags().Int(extension.FlagScan, 0, "Only this scan number")

	put := &cobra.Command{
		Use:   "put",
		Short: "Record a scanned answer",
		Long: `Record a scanned answer read as YAML or JSON from --file or stdin:

  examInstanceId: <instance>
  studentId: <student>
  scanNumber: 1
  answerObject: {...}

An existing answer with the same instance, student and scan number is
replaced.`,
		Args: cobra.NoArgs,
		RunE: e.runAnswerPut,
	}
	put.Flags().StringP(extension.FlagFile, "f", "", "Input file (YAML or JSON)")

	update := &cobra.Command{
		Use:   "update <instance> <student> <scan>",
		Short: "Replace the answer object of a scanned answer",
		Long:  `Replace the answer object of an existing answer with the object read from --file or stdin.`,
		Args:  cobra.ExactArgs(3),
		RunE:  e.runAnswerUpdate,
	}
	update.Flags().StringP(extension.FlagFile, "f", "", "Answer object file (YAML or JSON)")

	rm := &cobra.Command{
		Use:   "rm <instance>",
		Short: "Delete answers of an exam instance",
		Args:  cobra.ExactArgs(1),
		RunE:  e.runAnswerRm,
	}
	rm.Flags().String(extension.FlagStudent, "", "Only this student")
	rm.Flags().Int(extension.FlagScan, 0, "Only this scan number")

	c.AddCommand(ls, put, update, rm)
	return c
}

// answerFilter reads --student and --scan. An unset --scan matches every scan.
func answerFilter(c *cobra.Command) (string, *int) {
	student, _ := c.Flags().GetString(extension.FlagStudent)
	if !c.Flags().Changed(extension.FlagScan) {
		return student, nil
	}
	scan, _ := c.Flags().GetInt(extension.FlagScan)
	return student, &scan
}

func (e *Extension) runAnswerLs(c *cobra.Command, args []string) error {
	instanceID := args[0]
	student, scan := answerFilter(c)

	answers, err := e.svc.ExamInstanceAnswers(c.Context(), instanceID, student, scan)

	log.Event("entity:answer_ls", "list").
		Author(cmd.Author()).
		Kind(string(store.KindAnswer)).
		ID(instanceID).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("ls answers of %s: %w", instanceID, err))
	}
	w := cmd.Output()
	for _, a := range answers {
		fmt.Fprintln(w, render.Line(a))
	}
	return cmd.PrintJSON(answers)
}

func (e *Extension) runAnswerPut(c *cobra.Command, _ []string) error {
	var in store.ExamInstanceAnswer
	err := fileDecoder(c)(&in)
	var a *store.ExamInstanceAnswer
	if err == nil {
		a, err = e.svc.InsertExamInstanceAnswer(c.Context(), in)
	}

	key := store.AnswerKey(in.ExamInstanceID, in.StudentID, in.ScanNumber)
	log.Event("entity:answer_put", "insert").
		Author(cmd.Author()).
		Kind(string(store.KindAnswer)).
		ID(key).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("put answer: %w", err))
	}
	fmt.Fprintf(cmd.Output(), "Recorded answer %s\n", key)
	return cmd.PrintJSON(a)
}

func (e *Extension) runAnswerUpdate(c *cobra.Command, args []string) error {
	instanceID, studentID := args[0], args[1]
	scan, err := strconv.Atoi(args[2])
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("invalid scan number %q", args[2]))
	}
	key := store.AnswerKey(instanceID, studentID, scan)

	var answer store.Object
	err = fileDecoder(c)(&answer)
	var a *store.ExamInstanceAnswer
	if err == nil {
		a, err = e.svc.UpdateExamInstanceAnswer(c.Context(), instanceID, studentID, scan, answer)
	}
	if err == nil && a == nil {
		err = fmt.Errorf("answer %s: %w", key, store.ErrNotFound)
	}

	log.Event("entity:answer_update", "update").
		Author(cmd.Author()).
		Kind(string(store.KindAnswer)).
		ID(key).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("update answer: %w", err))
	}
	fmt.Fprintf(cmd.Output(), "Updated answer %s\n", key)
	return cmd.PrintJSON(a)
}

func (e *Extension) runAnswerRm(c *cobra.Command, args []string) error {
	instanceID := args[0]
	student, scan := answerFilter(c)

	ok, err := e.svc.DeleteExamInstanceAnswers(c.Context(), instanceID, student, scan)
	if err == nil && !ok {
		err = fmt.Errorf("no matching answers for instance %s: %w", instanceID, store.ErrNotFound)
	}

	log.Event("entity:answer_rm", "delete").
		Author(cmd.Author()).
		Kind(string(store.KindAnswer)).
		ID(instanceID).
		Detail("student", student).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("rm answers: %w", err))
	}
	fmt.Fprintf(cmd.Output(), "Deleted answers of instance %s\n", instanceID)
	return cmd.PrintJSON(map[string]any{"examInstanceId": instanceID, "deleted": true})
}
