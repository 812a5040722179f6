// ls.go implements "<kind> ls".
//
// Each kind's store filter honours a single key, so the flags are applied in
// the store's precedence order and the first one given wins.

package entity

import (
	"fmt"
	"reflect"

	"github.com/jpl-au/exambank/cmd"
	"github.com/jpl-au/exambank/extension"
	"github.com/jpl-au/exambank/internal/entity"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/jpl-au/exambank/internal/render"
	"github.com/jpl-au/exambank/internal/store"
	"github.com/spf13/cobra"
)

// lsFlags lists the filter flags of each kind in precedence order.
var lsFlags = map[store.Kind][]string{
	store.KindSubject:  {extension.FlagID, extension.FlagTag},
	store.KindQuestion: {extension.FlagID, extension.FlagExam, extension.FlagTag, extension.FlagSubject},
	store.KindExam:     {extension.FlagSubject, extension.FlagID, extension.FlagTag},
	store.KindStudent:  {extension.FlagID, extension.FlagExternal, extension.FlagTag},
}

var flagUsage = map[string]string{
	extension.FlagID:       "Only these ids (repeatable)",
	extension.FlagTag:      "Tag text contains (repeatable, case-insensitive)",
	extension.FlagExam:     "Questions of these exams (repeatable)",
	extension.FlagSubject:  "Linked to these subjects (repeatable)",
	extension.FlagExternal: "External student ids (repeatable)",
}

func (e *Extension) newLsCmd(k store.Kind) *cobra.Command {
	c := &cobra.Command{
		Use:   "ls",
		Short: fmt.Sprintf("List %ss", k),
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return e.runLs(c, k)
		},
	}
	if k == store.KindExamInstance {
		c.Long = "List the generated instances of one exam."
		c.Flags().String(extension.FlagExam, "", "Exam id (required)")
		_ = c.MarkFlagRequired(extension.FlagExam)
		return c
	}

	c.Long = fmt.Sprintf(`List %ss. Filters are tried in the order
  %v
and only the first one given is applied. Without a filter every %s is listed.`, k, lsFlags[k], k)
	for _, name := range lsFlags[k] {
		c.Flags().StringSlice(name, nil, flagUsage[name])
	}
	return c
}

// slice returns the values of a repeatable flag, or nil if it was not given.
func slice(c *cobra.Command, name string) []string {
	if !c.Flags().Changed(name) {
		return nil
	}
	v, _ := c.Flags().GetStringSlice(name)
	if v == nil {
		v = []string{}
	}
	return v
}

// lsFilter builds the store filter for k from the command's flags.
func lsFilter(c *cobra.Command, k store.Kind) any {
	switch k {
	case store.KindSubject:
		return &store.SubjectFilter{
			SubjectIDs: slice(c, extension.FlagID),
			Tags:       slice(c, extension.FlagTag),
		}
	case store.KindQuestion:
		return &store.QuestionFilter{
			QuestionIDs: slice(c, extension.FlagID),
			ExamIDs:     slice(c, extension.FlagExam),
			Tags:        slice(c, extension.FlagTag),
			SubjectIDs:  slice(c, extension.FlagSubject),
		}
	case store.KindExam:
		return &store.ExamFilter{
			SubjectIDs: slice(c, extension.FlagSubject),
			ExamIDs:    slice(c, extension.FlagID),
			Tags:       slice(c, extension.FlagTag),
		}
	case store.KindStudent:
		return &store.StudentFilter{
			StudentIDs:  slice(c, extension.FlagID),
			ExternalIDs: slice(c, extension.FlagExternal),
			Tags:        slice(c, extension.FlagTag),
		}
	case store.KindExamInstance:
		examID, _ := c.Flags().GetString(extension.FlagExam)
		return &entity.InstanceFilter{ExamID: examID}
	}
	return nil
}

func (e *Extension) runLs(c *cobra.Command, k store.Kind) error {
	ctx := c.Context()

	list, err := entity.List(ctx, e.svc, k, entity.Value(lsFilter(c, k)))

	log.Event("entity:ls", "list").
		Author(cmd.Author()).
		Kind(string(k)).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("ls %s: %w", k, err))
	}

	w := cmd.Output()
	items := reflect.ValueOf(list)
	for i := range items.Len() {
		fmt.Fprintln(w, render.Line(items.Index(i).Interface()))
	}
	return cmd.PrintJSON(list)
}
