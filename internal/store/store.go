// Package store defines the exam bank persistence types and the Store interface.
// Implementations handle the actual database operations while consumers
// depend only on this interface, enabling testing and alternative backends.
package store

import (
	"encoding/json"
)

// Object is an opaque JSON object payload. The store never inspects its
// shape; it only encodes, decodes and deep-merges whole values.
type Object map[string]any

// Subject groups questions. QuestionIDs is derived from the questions whose
// subject link points at this subject.
type Subject struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	QuestionIDs []string `json:"questionIds" yaml:"questionIds"`
	Tags        []string `json:"tags" yaml:"tags"`
}

// Question is a single question with opaque question and answer bodies.
type Question struct {
	ID             string   `json:"id" yaml:"id"`
	Text           string   `json:"text" yaml:"text"`
	Type           string   `json:"type" yaml:"type"`
	QuestionObject Object   `json:"questionObject" yaml:"questionObject"`
	AnswerObject   Object   `json:"answerObject" yaml:"answerObject"`
	SubjectID      *string  `json:"subjectId" yaml:"subjectId"`
	Tags           []string `json:"tags" yaml:"tags"`
}

// Exam is an ordered selection of questions plus generator configuration.
//
// SubjectIDs is presented as a list but the exams table holds a single
// nullable subject column: only the first id is ever persisted and any
// further ids are dropped on write.
type Exam struct {
	ID          string   `json:"id" yaml:"id"`
	Name        *string  `json:"name" yaml:"name"`
	SubjectIDs  []string `json:"subjectIds" yaml:"subjectIds"`
	QuestionIDs []string `json:"questionIds" yaml:"questionIds"`
	Configs     Object   `json:"configs" yaml:"configs"`
	Tags        []string `json:"tags" yaml:"tags"`
}

// ExamInstance is one generated sitting of an exam for a set of students.
type ExamInstance struct {
	ID         string   `json:"id" yaml:"id"`
	ExamID     string   `json:"examId" yaml:"examId"`
	Seed       int64    `json:"seed" yaml:"seed"`
	Generated  string   `json:"generated" yaml:"generated"` // RFC3339
	Groups     []string `json:"groups" yaml:"groups"`
	StudentIDs []string `json:"studentIds" yaml:"studentIds"`
}

// ExamInstanceAnswer is one scanned answer sheet. The triple
// (ExamInstanceID, StudentID, ScanNumber) is its key; ScanNumber is
// assigned by the caller.
type ExamInstanceAnswer struct {
	ExamInstanceID string `json:"examInstanceId" yaml:"examInstanceId"`
	StudentID      string `json:"studentId" yaml:"studentId"`
	ScanNumber     int    `json:"scanNumber" yaml:"scanNumber"`
	AnswerObject   Object `json:"answerObject" yaml:"answerObject"`
}

// Student is a person sitting exams. StudentID is the optional external
// identifier (matriculation number) and is unique when present.
type Student struct {
	ID        string   `json:"id" yaml:"id"`
	FirstName string   `json:"firstName" yaml:"firstName"`
	LastName  string   `json:"lastName" yaml:"lastName"`
	StudentID *string  `json:"studentId" yaml:"studentId"`
	Tags      []string `json:"tags" yaml:"tags"`
}

// Tag is a free-text label. Text is globally unique.
type Tag struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// Patches carry partial updates. A nil pointer or nil slice means the field
// was not supplied; a non-nil empty slice means "supplied and empty", which
// matters for replace updates.

// SubjectPatch is a partial Subject.
type SubjectPatch struct {
	Name        *string  `json:"name,omitempty"`
	QuestionIDs []string `json:"questionIds,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// QuestionPatch is a partial Question. A SubjectID pointing at the empty
// string clears the subject link.
type QuestionPatch struct {
	Text           *string  `json:"text,omitempty"`
	Type           *string  `json:"type,omitempty"`
	QuestionObject Object   `json:"questionObject,omitempty"`
	AnswerObject   Object   `json:"answerObject,omitempty"`
	SubjectID      *string  `json:"subjectId,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// ExamPatch is a partial Exam.
type ExamPatch struct {
	Name        *string  `json:"name,omitempty"`
	SubjectIDs  []string `json:"subjectIds,omitempty"`
	QuestionIDs []string `json:"questionIds,omitempty"`
	Configs     Object   `json:"configs,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// StudentPatch is a partial Student. A StudentID pointing at the empty
// string clears the external identifier.
type StudentPatch struct {
	FirstName *string  `json:"firstName,omitempty"`
	LastName  *string  `json:"lastName,omitempty"`
	StudentID *string  `json:"studentId,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// ExamInstancePatch is a partial ExamInstance.
type ExamInstancePatch struct {
	ExamID     *string  `json:"examId,omitempty"`
	Seed       *int64   `json:"seed,omitempty"`
	Generated  *string  `json:"generated,omitempty"`
	Groups     []string `json:"groups,omitempty"`
	StudentIDs []string `json:"studentIds,omitempty"`
}

// Filters select a subset of rows. Exactly one field is honoured per call:
// the first non-nil field in declaration order wins. A non-nil empty slice
// matches nothing. Tags holds substring patterns matched against tag text.

// SubjectFilter selects subjects.
type SubjectFilter struct {
	SubjectIDs []string `json:"subjectIds,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// QuestionFilter selects questions.
type QuestionFilter struct {
	QuestionIDs []string `json:"questionIds,omitempty"`
	ExamIDs     []string `json:"examIds,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	SubjectIDs  []string `json:"subjectIds,omitempty"`
}

// ExamFilter selects exams.
type ExamFilter struct {
	SubjectIDs []string `json:"subjectIds,omitempty"`
	ExamIDs    []string `json:"examIds,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// StudentFilter selects students. ExternalIDs matches the external
// StudentID rather than the primary key.
type StudentFilter struct {
	StudentIDs  []string `json:"studentIds,omitempty"`
	ExternalIDs []string `json:"externalIds,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// TagFilter selects tags. When Kind is set, only tags assigned to at least
// one entity of that kind are returned, optionally narrowed to IDs. Text
// applies only when Kind is empty.
type TagFilter struct {
	Kind Kind     `json:"kind,omitempty"`
	IDs  []string `json:"ids,omitempty"`
	Text []string `json:"text,omitempty"`
}

// Op names the kind of mutation reported to observers.
type Op string

const (
	OpInsert   Op = "insert"
	OpUpdate   Op = "update"
	OpDelete   Op = "delete"
	OpAssign   Op = "assign"
	OpUnassign Op = "unassign"
)

// Change describes one committed mutation.
type Change struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
	Op   Op     `json:"op"`
}

// Limits bounds user-supplied data. Zero means no limit.
type Limits struct {
	MaxTagLength int
	MaxPayload   int64
}

// Stats provides row counts across the bank for operational visibility.
type Stats struct {
	Subjects       int64 `json:"subjects"`
	Questions      int64 `json:"questions"`
	Exams          int64 `json:"exams"`
	Students       int64 `json:"students"`
	Tags           int64 `json:"tags"`
	ExamInstances  int64 `json:"examInstances"`
	Answers        int64 `json:"answers"`
	ExamQuestions  int64 `json:"examQuestions"`
	Enrolments     int64 `json:"enrolments"`     // examInstanceStudents rows
	TagAssignments int64 `json:"tagAssignments"` // rows across all tag join tables
}

// MarshalJSON encodes a value with indentation for human-readable CLI output.
// Use this instead of json.Marshal when the output will be displayed to users.
func MarshalJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
