// Package entity dispatches the generic list, get, insert, update and
// delete operations to the store method for a kind.
//
// Both the CLI and the MCP server address entities as (kind, id) pairs and
// receive request bodies in a wire format they decode themselves, so every
// operation takes a Decoder instead of a concrete input type.
package entity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/jpl-au/exambank/internal/store"
)

// ErrMissingExam is returned when instances are listed without an exam id.
var ErrMissingExam = errors.New("examId is required to list instances")

// Decoder fills v from a request body.
type Decoder func(v any) error

// JSON returns a Decoder reading data as strict JSON. Unknown fields are
// rejected and numbers inside payload objects are kept as json.Number.
// Empty data decodes to the zero value.
func JSON(data []byte) Decoder {
	return func(v any) error {
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		dec.UseNumber()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("%w: %w", store.ErrUserError, err)
		}
		return nil
	}
}

// Value returns a Decoder that copies an already-built filter or patch into
// the destination. v may be a value or a pointer of the destination's type;
// a nil v leaves the destination zero. The copy is direct, so a given but
// empty list stays empty rather than becoming absent.
func Value(v any) Decoder {
	return func(dst any) error {
		d := reflect.ValueOf(dst)
		if d.Kind() != reflect.Pointer || d.IsNil() {
			return fmt.Errorf("decode into %T: not a pointer", dst)
		}
		src := reflect.ValueOf(v)
		if src.Kind() == reflect.Pointer {
			if src.IsNil() {
				return nil
			}
			src = src.Elem()
		}
		if !src.IsValid() {
			return nil
		}
		if !src.Type().AssignableTo(d.Elem().Type()) {
			return fmt.Errorf("%w: %T cannot fill %T", store.ErrUserError, v, dst)
		}
		d.Elem().Set(src)
		return nil
	}
}

// InstanceFilter selects exam instances. Instances are only ever listed
// per exam.
type InstanceFilter struct {
	ExamID string `json:"examId"`
}

// found converts a possibly-nil entity pointer into a result, mapping
// absence to ErrNotFound.
func found[T any](v *T, err error, k store.Kind, id string) (any, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%s %s: %w", k, id, store.ErrNotFound)
	}
	return v, nil
}

// Get returns one entity of kind k.
func Get(ctx context.Context, st store.Store, k store.Kind, id string) (any, error) {
	switch k {
	case store.KindSubject:
		v, err := st.Subject(ctx, id)
		return found(v, err, k, id)
	case store.KindQuestion:
		v, err := st.Question(ctx, id)
		return found(v, err, k, id)
	case store.KindExam:
		v, err := st.Exam(ctx, id)
		return found(v, err, k, id)
	case store.KindStudent:
		v, err := st.Student(ctx, id)
		return found(v, err, k, id)
	case store.KindExamInstance:
		v, err := st.ExamInstance(ctx, id)
		return found(v, err, k, id)
	case store.KindTag:
		v, err := st.Tag(ctx, id)
		return found(v, err, k, id)
	}
	return nil, fmt.Errorf("%w: %q", store.ErrUnknownKind, k)
}

// List returns the entities of kind k matching the filter decoded by
// decode. A nil decode lists everything.
func List(ctx context.Context, st store.Store, k store.Kind, decode Decoder) (any, error) {
	if decode == nil {
		decode = func(any) error { return nil }
	}
	switch k {
	case store.KindSubject:
		var f store.SubjectFilter
		if err := decode(&f); err != nil {
			return nil, err
		}
		return st.Subjects(ctx, &f)
	case store.KindQuestion:
		var f store.QuestionFilter
		if err := decode(&f); err != nil {
			return nil, err
		}
		return st.Questions(ctx, &f)
	case store.KindExam:
		var f store.ExamFilter
		if err := decode(&f); err != nil {
			return nil, err
		}
		return st.Exams(ctx, &f)
	case store.KindStudent:
		var f store.StudentFilter
		if err := decode(&f); err != nil {
			return nil, err
		}
		return st.Students(ctx, &f)
	case store.KindExamInstance:
		var f InstanceFilter
		if err := decode(&f); err != nil {
			return nil, err
		}
		if f.ExamID == "" {
			return nil, fmt.Errorf("%w: %w", store.ErrUserError, ErrMissingExam)
		}
		return st.ExamInstances(ctx, f.ExamID)
	case store.KindTag:
		var f store.TagFilter
		if err := decode(&f); err != nil {
			return nil, err
		}
		return st.Tags(ctx, &f)
	}
	return nil, fmt.Errorf("%w: %q", store.ErrUnknownKind, k)
}

// Insert creates an entity of kind k from the decoded body. Any id in the
// body is ignored. Inserting a tag returns the existing tag with that text
// if there is one.
func Insert(ctx context.Context, st store.Store, k store.Kind, decode Decoder) (any, error) {
	switch k {
	case store.KindSubject:
		var in store.Subject
		if err := decode(&in); err != nil {
			return nil, err
		}
		return st.InsertSubject(ctx, in)
	case store.KindQuestion:
		var in store.Question
		if err := decode(&in); err != nil {
			return nil, err
		}
		return st.InsertQuestion(ctx, in)
	case store.KindExam:
		var in store.Exam
		if err := decode(&in); err != nil {
			return nil, err
		}
		return st.InsertExam(ctx, in)
	case store.KindStudent:
		var in store.Student
		if err := decode(&in); err != nil {
			return nil, err
		}
		return st.InsertStudent(ctx, in)
	case store.KindExamInstance:
		var in store.ExamInstance
		if err := decode(&in); err != nil {
			return nil, err
		}
		return st.InsertExamInstance(ctx, in)
	case store.KindTag:
		var in store.Tag
		if err := decode(&in); err != nil {
			return nil, err
		}
		return st.GetOrCreateTag(ctx, in.Text)
	}
	return nil, fmt.Errorf("%w: %q", store.ErrUnknownKind, k)
}

// Update applies the decoded patch to entity id of kind k and returns the
// entity before and after. With replace, collection fields absent from the
// patch are cleared; otherwise they are kept.
func Update(ctx context.Context, st store.Store, k store.Kind, id string, decode Decoder, replace bool) (before, after any, err error) {
	if before, err = Get(ctx, st, k, id); err != nil {
		return nil, nil, err
	}

	switch k {
	case store.KindSubject:
		var p store.SubjectPatch
		if err := decode(&p); err != nil {
			return nil, nil, err
		}
		v, uerr := st.UpdateSubject(ctx, id, p, replace)
		after, err = found(v, uerr, k, id)
	case store.KindQuestion:
		var p store.QuestionPatch
		if err := decode(&p); err != nil {
			return nil, nil, err
		}
		v, uerr := st.UpdateQuestion(ctx, id, p, replace)
		after, err = found(v, uerr, k, id)
	case store.KindExam:
		var p store.ExamPatch
		if err := decode(&p); err != nil {
			return nil, nil, err
		}
		v, uerr := st.UpdateExam(ctx, id, p, replace)
		after, err = found(v, uerr, k, id)
	case store.KindStudent:
		var p store.StudentPatch
		if err := decode(&p); err != nil {
			return nil, nil, err
		}
		v, uerr := st.UpdateStudent(ctx, id, p, replace)
		after, err = found(v, uerr, k, id)
	case store.KindExamInstance:
		var p store.ExamInstancePatch
		if err := decode(&p); err != nil {
			return nil, nil, err
		}
		v, uerr := st.UpdateExamInstance(ctx, id, p, replace)
		after, err = found(v, uerr, k, id)
	case store.KindTag:
		var p store.Tag
		if err := decode(&p); err != nil {
			return nil, nil, err
		}
		v, uerr := st.UpdateTag(ctx, id, p.Text)
		after, err = found(v, uerr, k, id)
	default:
		return nil, nil, fmt.Errorf("%w: %q", store.ErrUnknownKind, k)
	}
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// Delete removes entity id of kind k. Dependent rows go with it.
func Delete(ctx context.Context, st store.Store, k store.Kind, id string) error {
	var ok bool
	var err error
	switch k {
	case store.KindSubject:
		ok, err = st.DeleteSubject(ctx, id)
	case store.KindQuestion:
		ok, err = st.DeleteQuestion(ctx, id)
	case store.KindExam:
		ok, err = st.DeleteExam(ctx, id)
	case store.KindStudent:
		ok, err = st.DeleteStudent(ctx, id)
	case store.KindExamInstance:
		ok, err = st.DeleteExamInstance(ctx, id)
	case store.KindTag:
		ok, err = st.DeleteTag(ctx, id)
	default:
		return fmt.Errorf("%w: %q", store.ErrUnknownKind, k)
	}
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s %s: %w", k, id, store.ErrNotFound)
	}
	return nil
}

// ID returns the id of an entity returned by this package, or "" when v is
// nil or a nil pointer.
func ID(v any) string {
	switch e := v.(type) {
	case *store.Subject:
		return idOrEmpty(e, func() string { return e.ID })
	case *store.Question:
		return idOrEmpty(e, func() string { return e.ID })
	case *store.Exam:
		return idOrEmpty(e, func() string { return e.ID })
	case *store.Student:
		return idOrEmpty(e, func() string { return e.ID })
	case *store.ExamInstance:
		return idOrEmpty(e, func() string { return e.ID })
	case *store.Tag:
		return idOrEmpty(e, func() string { return e.ID })
	}
	return ""
}

func idOrEmpty[T any](p *T, id func() string) string {
	if p == nil {
		return ""
	}
	return id()
}
