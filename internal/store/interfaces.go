// interfaces.go defines the storage abstraction for the exam bank.
//
// Separated from the SQLite implementation so consumers depend only on the
// capabilities they need. Each entity gets its own small interface; Store
// composes them.
//
// Design: select and update entry points return nil (and delete returns
// false) with a nil error when the target does not exist. Errors are
// reserved for bad references (ErrUserError) and database failures
// (ErrDatabase).

package store

import (
	"context"
	"database/sql"
)

// SubjectStore manages subjects.
type SubjectStore interface {
	Subjects(ctx context.Context, f *SubjectFilter) ([]Subject, error)
	Subject(ctx context.Context, id string) (*Subject, error)
	InsertSubject(ctx context.Context, in Subject) (*Subject, error)
	UpdateSubject(ctx context.Context, id string, p SubjectPatch, replace bool) (*Subject, error)
	DeleteSubject(ctx context.Context, id string) (bool, error)
}

// QuestionStore manages questions.
type QuestionStore interface {
	Questions(ctx context.Context, f *QuestionFilter) ([]Question, error)
	Question(ctx context.Context, id string) (*Question, error)
	InsertQuestion(ctx context.Context, in Question) (*Question, error)
	UpdateQuestion(ctx context.Context, id string, p QuestionPatch, replace bool) (*Question, error)
	DeleteQuestion(ctx context.Context, id string) (bool, error)
}

// ExamStore manages exams.
type ExamStore interface {
	Exams(ctx context.Context, f *ExamFilter) ([]Exam, error)
	Exam(ctx context.Context, id string) (*Exam, error)
	InsertExam(ctx context.Context, in Exam) (*Exam, error)
	UpdateExam(ctx context.Context, id string, p ExamPatch, replace bool) (*Exam, error)
	DeleteExam(ctx context.Context, id string) (bool, error)
}

// StudentStore manages students.
type StudentStore interface {
	Students(ctx context.Context, f *StudentFilter) ([]Student, error)
	Student(ctx context.Context, id string) (*Student, error)
	InsertStudent(ctx context.Context, in Student) (*Student, error)
	UpdateStudent(ctx context.Context, id string, p StudentPatch, replace bool) (*Student, error)
	DeleteStudent(ctx context.Context, id string) (bool, error)
}

// ExamInstanceStore manages generated exam instances.
type ExamInstanceStore interface {
	// ExamInstances returns every instance generated from examID.
	ExamInstances(ctx context.Context, examID string) ([]ExamInstance, error)
	ExamInstance(ctx context.Context, id string) (*ExamInstance, error)
	InsertExamInstance(ctx context.Context, in ExamInstance) (*ExamInstance, error)
	UpdateExamInstance(ctx context.Context, id string, p ExamInstancePatch, replace bool) (*ExamInstance, error)
	DeleteExamInstance(ctx context.Context, id string) (bool, error)
	// DeleteExamInstances removes every instance of examID.
	DeleteExamInstances(ctx context.Context, examID string) (bool, error)
}

// AnswerStore manages scanned answers. An empty studentID or nil scan
// widens the selection to every student or every scan respectively.
type AnswerStore interface {
	ExamInstanceAnswers(ctx context.Context, instanceID, studentID string, scan *int) ([]ExamInstanceAnswer, error)
	InsertExamInstanceAnswer(ctx context.Context, in ExamInstanceAnswer) (*ExamInstanceAnswer, error)
	UpdateExamInstanceAnswer(ctx context.Context, instanceID, studentID string, scan int, answer Object) (*ExamInstanceAnswer, error)
	DeleteExamInstanceAnswers(ctx context.Context, instanceID, studentID string, scan *int) (bool, error)
}

// TagStore manages tags and their assignment to entities.
type TagStore interface {
	Tags(ctx context.Context, f *TagFilter) ([]Tag, error)
	Tag(ctx context.Context, id string) (*Tag, error)
	TagByText(ctx context.Context, text string) (*Tag, error)
	// GetOrCreateTag returns the tag with text, creating it if absent.
	GetOrCreateTag(ctx context.Context, text string) (*Tag, error)
	UpdateTag(ctx context.Context, id, text string) (*Tag, error)
	DeleteTag(ctx context.Context, id string) (bool, error)
	// AssignTag links a tag to an entity. Returns false if either is missing.
	AssignTag(ctx context.Context, tagID string, kind Kind, entityID string) (bool, error)
	// UnassignTag unlinks a tag from an entity. Returns false if the tag is missing.
	UnassignTag(ctx context.Context, tagID string, kind Kind, entityID string) (bool, error)
	// FilterByTagText returns ids of kind entities carrying any tag whose
	// text contains one of patterns.
	FilterByTagText(ctx context.Context, kind Kind, patterns []string) ([]string, error)
}

// Maintainer defines operations for database maintenance and lifecycle.
type Maintainer interface {
	// Close releases the database connection.
	Close() error

	// DB exposes the underlying connection for extensions needing custom tables.
	DB() *sql.DB

	// Checkpoint flushes WAL to the main database file.
	Checkpoint(ctx context.Context) error

	// Stats returns row counts across the bank.
	Stats(ctx context.Context) (*Stats, error)

	// Batch runs a group of inserts in a single transaction.
	Batch(ctx context.Context, fn func(b *Batch) error) error

	// Observe registers fn to be called after every committed change.
	Observe(fn func(Change))

	// SetLimits replaces the size limits applied to writes.
	SetLimits(l Limits)
}

// Store defines the persistence interface for the exam bank.
type Store interface {
	SubjectStore
	QuestionStore
	ExamStore
	StudentStore
	ExamInstanceStore
	AnswerStore
	TagStore
	Maintainer
}
