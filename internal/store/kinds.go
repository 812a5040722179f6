// kinds.go maps each entity kind to the tables that back it.
//
// Generic operations (existence checks, tag joins, tag-text filtering) look
// the kind up once in this table instead of switching on a type name at
// every call site.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Kind names an entity type.
type Kind string

const (
	KindSubject      Kind = "subject"
	KindQuestion     Kind = "question"
	KindExam         Kind = "exam"
	KindStudent      Kind = "student"
	KindExamInstance Kind = "examInstance"
	KindTag          Kind = "tag"

	// KindAnswer only appears in change notifications; answers have a
	// composite key and no row of their own in the kind table.
	KindAnswer Kind = "answer"
)

type kindSpec struct {
	table     string
	tagTable  string // empty when the kind cannot be tagged
	tagColumn string
}

var kinds = map[Kind]kindSpec{
	KindSubject:      {table: "subjects", tagTable: "subjectTags", tagColumn: "subjectId"},
	KindQuestion:     {table: "questions", tagTable: "questionTags", tagColumn: "questionId"},
	KindExam:         {table: "exams", tagTable: "examTags", tagColumn: "examId"},
	KindStudent:      {table: "students", tagTable: "studentTags", tagColumn: "studentId"},
	KindExamInstance: {table: "examInstances"},
	KindTag:          {table: "tags"},
}

// Kinds returns every kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindSubject, KindQuestion, KindExam, KindStudent, KindExamInstance, KindTag}
}

// TaggableKinds returns the kinds that carry tags.
func TaggableKinds() []Kind {
	return []Kind{KindSubject, KindQuestion, KindExam, KindStudent}
}

// ParseKind resolves a kind name. Matching is case-insensitive and accepts
// "instance" for KindExamInstance.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "subject":
		return KindSubject, nil
	case "question":
		return KindQuestion, nil
	case "exam":
		return KindExam, nil
	case "student":
		return KindStudent, nil
	case "examinstance", "instance":
		return KindExamInstance, nil
	case "tag":
		return KindTag, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Taggable reports whether entities of this kind carry tags.
func (k Kind) Taggable() bool {
	return kinds[k].tagTable != ""
}

func specFor(k Kind) (kindSpec, error) {
	spec, ok := kinds[k]
	if !ok {
		return kindSpec{}, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
	return spec, nil
}

func taggableSpec(k Kind) (kindSpec, error) {
	spec, err := specFor(k)
	if err != nil {
		return spec, err
	}
	if spec.tagTable == "" {
		return spec, fmt.Errorf("%w: %s cannot be tagged", ErrUnknownKind, k)
	}
	return spec, nil
}

// exists reports whether a row of kind k with the given id exists.
func exists(ctx context.Context, q querier, k Kind, id string) (bool, error) {
	spec, err := specFor(k)
	if err != nil {
		return false, err
	}
	var one int
	err = q.QueryRowContext(ctx, `SELECT 1 FROM `+spec.table+` WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check %s %s: %w", k, id, err)
	}
	return true, nil
}

// mustExist returns a *ReferenceError when the row is missing.
func mustExist(ctx context.Context, q querier, k Kind, id string) error {
	ok, err := exists(ctx, q, k, id)
	if err != nil {
		return err
	}
	if !ok {
		return &ReferenceError{Kind: k, ID: id}
	}
	return nil
}

// tagMatchIDs returns a subquery selecting ids of kind entities whose tags
// match any LIKE pattern in the JSON array bound to its single parameter.
func tagMatchIDs(spec kindSpec) string {
	return `SELECT x.` + spec.tagColumn + ` FROM ` + spec.tagTable + ` x
		JOIN tags t ON t.id = x.tagId
		WHERE EXISTS (SELECT 1 FROM json_each(?) WHERE t.text LIKE value ESCAPE '\')`
}
