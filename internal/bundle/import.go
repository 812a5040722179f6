package bundle

import (
	"context"
	"fmt"

	"github.com/jpl-au/exambank/internal/progress"
	"github.com/jpl-au/exambank/internal/store"
)

// Result counts what an import inserted (or would insert, for a dry run).
type Result struct {
	Tags      int `json:"tags"`
	Subjects  int `json:"subjects"`
	Questions int `json:"questions"`
	Exams     int `json:"exams"`
	Students  int `json:"students"`
	Instances int `json:"instances"`
	Answers   int `json:"answers"`

	// IDs maps each kind's bundle ids to the ids they were given in the
	// bank. Keyed by kind since a hand-written bundle may reuse an id across
	// kinds. Empty for a dry run.
	IDs map[store.Kind]map[string]string `json:"ids,omitempty"`
}

// idMap remaps one kind's bundle ids to bank ids.
type idMap struct {
	kind store.Kind
	ids  map[string]string
}

func newIDMap(k store.Kind) *idMap {
	return &idMap{kind: k, ids: make(map[string]string)}
}

// one rewrites a single reference. Every reference must point at an entity
// inside the bundle.
func (m *idMap) one(owner, id string) (string, error) {
	if id == "" {
		return "", nil
	}
	if nid, ok := m.ids[id]; ok {
		return nid, nil
	}
	return "", fmt.Errorf("%w: %s references %s %s, which is not in the bundle", ErrBadBundle, owner, m.kind, id)
}

func (m *idMap) list(owner string, ids []string) ([]string, error) {
	if ids == nil {
		return nil, nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		nid, err := m.one(owner, id)
		if err != nil {
			return nil, err
		}
		out = append(out, nid)
	}
	return out, nil
}

// Check verifies that every reference in b resolves inside b without
// touching a bank. Import runs the same checks as it goes.
func Check(b *Bundle) (Result, error) {
	r, err := apply(context.Background(), b, nil)
	r.IDs = nil
	return r, err
}

// Import inserts b into dst in a single transaction. On error nothing is
// written.
func Import(ctx context.Context, dst Target, b *Bundle) (Result, error) {
	var r Result
	err := dst.Batch(ctx, func(tx *store.Batch) error {
		var err error
		r, err = apply(ctx, b, tx)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	return r, nil
}

// apply walks the bundle in dependency order. With tx nil it only checks
// references, assigning placeholder ids.
func apply(ctx context.Context, b *Bundle, tx *store.Batch) (Result, error) {
	r := Result{IDs: make(map[store.Kind]map[string]string)}
	subjects := newIDMap(store.KindSubject)
	questions := newIDMap(store.KindQuestion)
	exams := newIDMap(store.KindExam)
	students := newIDMap(store.KindStudent)
	instances := newIDMap(store.KindExamInstance)

	prog := progress.New("Importing", b.Len())
	defer prog.Done()

	// insert runs fn against the batch, or hands back the bundle id when
	// only checking.
	insert := func(m *idMap, oldID string, fn func() (string, error)) error {
		nid := oldID
		if tx != nil {
			var err error
			if nid, err = fn(); err != nil {
				return fmt.Errorf("import %s %s: %w", m.kind, oldID, err)
			}
		}
		if _, dup := m.ids[oldID]; dup {
			return fmt.Errorf("%w: duplicate %s id %s", ErrBadBundle, m.kind, oldID)
		}
		m.ids[oldID] = nid
		if r.IDs[m.kind] == nil {
			r.IDs[m.kind] = make(map[string]string)
		}
		r.IDs[m.kind][oldID] = nid
		prog.Step()
		return nil
	}

	for _, t := range b.Tags {
		if tx != nil {
			if _, err := tx.GetOrCreateTag(t.Text); err != nil {
				return r, fmt.Errorf("import tag %q: %w", t.Text, err)
			}
		}
		r.Tags++
		prog.Step()
	}

	for _, s := range b.Subjects {
		// Questions carry the subject link, so it is rebuilt from them.
		in := store.Subject{Name: s.Name, Tags: s.Tags}
		if err := insert(subjects, s.ID, func() (string, error) { return tx.InsertSubject(in) }); err != nil {
			return r, err
		}
		r.Subjects++
	}

	for _, q := range b.Questions {
		in := q
		in.ID = ""
		if q.SubjectID != nil {
			sid, err := subjects.one("question "+q.ID, *q.SubjectID)
			if err != nil {
				return r, err
			}
			in.SubjectID = &sid
		}
		if err := insert(questions, q.ID, func() (string, error) { return tx.InsertQuestion(in) }); err != nil {
			return r, err
		}
		r.Questions++
	}

	for _, e := range b.Exams {
		in := e
		in.ID = ""
		var err error
		if in.SubjectIDs, err = subjects.list("exam "+e.ID, e.SubjectIDs); err != nil {
			return r, err
		}
		if in.QuestionIDs, err = questions.list("exam "+e.ID, e.QuestionIDs); err != nil {
			return r, err
		}
		if err := insert(exams, e.ID, func() (string, error) { return tx.InsertExam(in) }); err != nil {
			return r, err
		}
		r.Exams++
	}

	for _, s := range b.Students {
		in := s
		in.ID = ""
		if err := insert(students, s.ID, func() (string, error) { return tx.InsertStudent(in) }); err != nil {
			return r, err
		}
		r.Students++
	}

	for _, inst := range b.Instances {
		in := inst
		in.ID = ""
		var err error
		if in.ExamID, err = exams.one("instance "+inst.ID, inst.ExamID); err != nil {
			return r, err
		}
		if in.StudentIDs, err = students.list("instance "+inst.ID, inst.StudentIDs); err != nil {
			return r, err
		}
		if err := insert(instances, inst.ID, func() (string, error) { return tx.InsertExamInstance(in) }); err != nil {
			return r, err
		}
		r.Instances++
	}

	for _, a := range b.Answers {
		owner := "answer " + store.AnswerKey(a.ExamInstanceID, a.StudentID, a.ScanNumber)
		in := a
		var err error
		if in.ExamInstanceID, err = instances.one(owner, a.ExamInstanceID); err != nil {
			return r, err
		}
		if in.StudentID, err = students.one(owner, a.StudentID); err != nil {
			return r, err
		}
		if tx != nil {
			if err := tx.InsertExamInstanceAnswer(in); err != nil {
				return r, fmt.Errorf("import %s: %w", owner, err)
			}
		}
		r.Answers++
		prog.Step()
	}
	return r, nil
}
