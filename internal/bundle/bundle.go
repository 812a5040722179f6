// Package bundle moves a whole exam bank in and out of a single YAML
// document.
//
// Export reads every entity. Import inserts a bundle into an existing bank
// in one transaction, giving every entity a fresh id and rewriting the
// references between them, so the same bundle can be imported twice or
// merged into a bank that already holds data.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jpl-au/exambank/internal/progress"
	"github.com/jpl-au/exambank/internal/store"
	"gopkg.in/yaml.v3"
)

// FormatVersion is the bundle layout written by Export.
const FormatVersion = 1

// ErrBadBundle is returned for bundles that cannot be imported as written.
var ErrBadBundle = errors.New("invalid bundle")

// Bundle is the serialised form of a bank.
type Bundle struct {
	Version   int                        `yaml:"version" json:"version"`
	Exported  string                     `yaml:"exported" json:"exported"` // RFC3339
	Tags      []store.Tag                `yaml:"tags" json:"tags"`
	Subjects  []store.Subject            `yaml:"subjects" json:"subjects"`
	Questions []store.Question           `yaml:"questions" json:"questions"`
	Exams     []store.Exam               `yaml:"exams" json:"exams"`
	Students  []store.Student            `yaml:"students" json:"students"`
	Instances []store.ExamInstance       `yaml:"instances" json:"instances"`
	Answers   []store.ExamInstanceAnswer `yaml:"answers" json:"answers"`
}

// Len returns the number of entities in the bundle.
func (b *Bundle) Len() int {
	return len(b.Tags) + len(b.Subjects) + len(b.Questions) + len(b.Exams) +
		len(b.Students) + len(b.Instances) + len(b.Answers)
}

// Source is the read side of a bank needed for export.
type Source interface {
	Tags(ctx context.Context, f *store.TagFilter) ([]store.Tag, error)
	Subjects(ctx context.Context, f *store.SubjectFilter) ([]store.Subject, error)
	Questions(ctx context.Context, f *store.QuestionFilter) ([]store.Question, error)
	Exams(ctx context.Context, f *store.ExamFilter) ([]store.Exam, error)
	Students(ctx context.Context, f *store.StudentFilter) ([]store.Student, error)
	ExamInstances(ctx context.Context, examID string) ([]store.ExamInstance, error)
	ExamInstanceAnswers(ctx context.Context, instanceID, studentID string, scan *int) ([]store.ExamInstanceAnswer, error)
}

// Target is the write side of a bank needed for import.
type Target interface {
	Batch(ctx context.Context, fn func(b *store.Batch) error) error
}

// Export reads the whole bank.
func Export(ctx context.Context, src Source) (*Bundle, error) {
	b := &Bundle{Version: FormatVersion, Exported: time.Now().UTC().Format(time.RFC3339)}

	var err error
	if b.Tags, err = src.Tags(ctx, nil); err != nil {
		return nil, fmt.Errorf("export tags: %w", err)
	}
	if b.Subjects, err = src.Subjects(ctx, nil); err != nil {
		return nil, fmt.Errorf("export subjects: %w", err)
	}
	if b.Questions, err = src.Questions(ctx, nil); err != nil {
		return nil, fmt.Errorf("export questions: %w", err)
	}
	if b.Exams, err = src.Exams(ctx, nil); err != nil {
		return nil, fmt.Errorf("export exams: %w", err)
	}
	if b.Students, err = src.Students(ctx, nil); err != nil {
		return nil, fmt.Errorf("export students: %w", err)
	}

	prog := progress.New("Exporting instances", len(b.Exams))
	defer prog.Done()
	for _, e := range b.Exams {
		insts, err := src.ExamInstances(ctx, e.ID)
		if err != nil {
			return nil, fmt.Errorf("export instances of %s: %w", e.ID, err)
		}
		for _, inst := range insts {
			answers, err := src.ExamInstanceAnswers(ctx, inst.ID, "", nil)
			if err != nil {
				return nil, fmt.Errorf("export answers of %s: %w", inst.ID, err)
			}
			b.Answers = append(b.Answers, answers...)
		}
		b.Instances = append(b.Instances, insts...)
		prog.Step()
	}
	return b, nil
}

// Encode writes b as YAML.
func Encode(w io.Writer, b *Bundle) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	return enc.Close()
}

// Decode reads a YAML (or JSON) bundle.
func Decode(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := yaml.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadBundle, err)
	}
	if b.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d (want %d)", ErrBadBundle, b.Version, FormatVersion)
	}
	return &b, nil
}
