// Package render turns entities into markdown for terminal display.
//
// On a terminal the markdown goes through glamour with the configured
// style; piped output gets the markdown itself so it stays greppable.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/jpl-au/exambank/internal/store"
	"golang.org/x/term"
)

// Markdown returns the markdown rendering of an entity. v may be any store
// entity type or a pointer to one.
func Markdown(v any) (string, error) {
	var b strings.Builder
	switch e := v.(type) {
	case *store.Subject:
		return Markdown(*e)
	case *store.Question:
		return Markdown(*e)
	case *store.Exam:
		return Markdown(*e)
	case *store.Student:
		return Markdown(*e)
	case *store.ExamInstance:
		return Markdown(*e)
	case *store.ExamInstanceAnswer:
		return Markdown(*e)
	case *store.Tag:
		return Markdown(*e)

	case store.Subject:
		fmt.Fprintf(&b, "# %s\n\n", e.Name)
		field(&b, "Subject", e.ID)
		tags(&b, e.Tags)
		ids(&b, "Questions", e.QuestionIDs)

	case store.Question:
		fmt.Fprintf(&b, "# %s\n\n", e.Text)
		field(&b, "Question", e.ID)
		field(&b, "Type", e.Type)
		if e.SubjectID != nil {
			field(&b, "Subject", *e.SubjectID)
		}
		tags(&b, e.Tags)
		if err := object(&b, "Question object", e.QuestionObject); err != nil {
			return "", err
		}
		if err := object(&b, "Answer object", e.AnswerObject); err != nil {
			return "", err
		}

	case store.Exam:
		name := "(unnamed exam)"
		if e.Name != nil {
			name = *e.Name
		}
		fmt.Fprintf(&b, "# %s\n\n", name)
		field(&b, "Exam", e.ID)
		if len(e.SubjectIDs) > 0 {
			field(&b, "Subject", e.SubjectIDs[0])
		}
		tags(&b, e.Tags)
		ids(&b, "Questions", e.QuestionIDs)
		if err := object(&b, "Configs", e.Configs); err != nil {
			return "", err
		}

	case store.Student:
		fmt.Fprintf(&b, "# %s %s\n\n", e.FirstName, e.LastName)
		field(&b, "Student", e.ID)
		if e.StudentID != nil {
			field(&b, "Student number", *e.StudentID)
		}
		tags(&b, e.Tags)

	case store.ExamInstance:
		fmt.Fprintf(&b, "# Instance of %s\n\n", e.ExamID)
		field(&b, "Instance", e.ID)
		field(&b, "Seed", fmt.Sprint(e.Seed))
		field(&b, "Generated", e.Generated)
		if len(e.Groups) > 0 {
			field(&b, "Groups", strings.Join(e.Groups, ", "))
		}
		ids(&b, "Students", e.StudentIDs)

	case store.ExamInstanceAnswer:
		fmt.Fprintf(&b, "# Scan %d\n\n", e.ScanNumber)
		field(&b, "Instance", e.ExamInstanceID)
		field(&b, "Student", e.StudentID)
		if err := object(&b, "Answer object", e.AnswerObject); err != nil {
			return "", err
		}

	case store.Tag:
		fmt.Fprintf(&b, "# %s\n\n", e.Text)
		field(&b, "Tag", e.ID)

	default:
		return "", fmt.Errorf("cannot render %T", v)
	}
	return b.String(), nil
}

func field(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "- **%s:** `%s`\n", name, value)
}

func tags(b *strings.Builder, t []string) {
	if len(t) == 0 {
		return
	}
	fmt.Fprintf(b, "- **Tags:** %s\n", strings.Join(t, ", "))
}

func ids(b *strings.Builder, heading string, list []string) {
	fmt.Fprintf(b, "\n## %s (%d)\n\n", heading, len(list))
	for i, id := range list {
		fmt.Fprintf(b, "%d. `%s`\n", i+1, id)
	}
}

func object(b *strings.Builder, heading string, o store.Object) error {
	if o == nil {
		return nil
	}
	data, err := store.MarshalJSON(o)
	if err != nil {
		return fmt.Errorf("encode %s: %w", strings.ToLower(heading), err)
	}
	fmt.Fprintf(b, "\n## %s\n\n```json\n%s\n```\n", heading, data)
	return nil
}

// IsTerminal reports whether stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Write writes md to w, rendered through glamour with style when styled is
// set. A rendering failure falls back to the plain markdown.
func Write(w io.Writer, md, style string, styled bool) error {
	if styled {
		if out, err := glamour.Render(md, style); err == nil {
			_, err = io.WriteString(w, out)
			return err
		}
	}
	_, err := io.WriteString(w, md)
	return err
}

// Line returns a one-line summary of an entity for listings: its id, two
// spaces, and its name or text.
func Line(v any) string {
	switch e := v.(type) {
	case store.Subject:
		return e.ID + "  " + e.Name
	case store.Question:
		return fmt.Sprintf("%s  [%s] %s", e.ID, e.Type, e.Text)
	case store.Exam:
		if e.Name == nil {
			return e.ID + "  (unnamed exam)"
		}
		return e.ID + "  " + *e.Name
	case store.Student:
		s := e.ID + "  " + e.LastName + ", " + e.FirstName
		if e.StudentID != nil {
			s += " (" + *e.StudentID + ")"
		}
		return s
	case store.ExamInstance:
		return fmt.Sprintf("%s  %s  %d student(s)", e.ID, e.Generated, len(e.StudentIDs))
	case store.ExamInstanceAnswer:
		return fmt.Sprintf("%s  scan %d", e.StudentID, e.ScanNumber)
	case store.Tag:
		return e.ID + "  " + e.Text
	}
	return fmt.Sprint(v)
}
