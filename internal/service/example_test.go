package service_test

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jpl-au/exambank/internal/bank"
	"github.com/jpl-au/exambank/internal/service"
	"github.com/jpl-au/exambank/internal/store"
)

// tempBank creates a bank in a temporary directory for examples.
func tempBank() (service.Service, func()) {
	dir, err := os.MkdirTemp("", "exambank-example-*")
	if err != nil {
		panic(err)
	}
	if err := bank.Init(false, "", false, dir); err != nil {
		panic(err)
	}
	svc, err := bank.New("", dir)
	if err != nil {
		panic(err)
	}
	cleanup := func() {
		svc.Close()
		os.RemoveAll(dir)
	}
	return svc, cleanup
}

func ptr[T any](v T) *T { return &v }

func Example_basicUsage() {
	svc, cleanup := tempBank()
	defer cleanup()
	ctx := context.Background()

	s, err := svc.InsertSubject(ctx, store.Subject{Name: "Physics"})
	if err != nil {
		panic(err)
	}
	q, err := svc.InsertQuestion(ctx, store.Question{
		Text:      "Speed of light?",
		Type:      "numeric",
		SubjectID: &s.ID,
	})
	if err != nil {
		panic(err)
	}

	// The subject's question list follows the question's subject link.
	s, _ = svc.Subject(ctx, s.ID)
	fmt.Println(s.Name, len(s.QuestionIDs), s.QuestionIDs[0] == q.ID)
	// Output:
	// Physics 1 true
}

func Example_notFound() {
	svc, cleanup := tempBank()
	defer cleanup()
	ctx := context.Background()

	// Missing entities are not errors.
	s, err := svc.Subject(ctx, "no-such-id")
	fmt.Println(s == nil, err)
	ok, err := svc.DeleteSubject(ctx, "no-such-id")
	fmt.Println(ok, err)
	// Output:
	// true <nil>
	// false <nil>
}

func Example_mergeUpdate() {
	svc, cleanup := tempBank()
	defer cleanup()
	ctx := context.Background()

	q, _ := svc.InsertQuestion(ctx, store.Question{
		Text:         "2 + 2?",
		Type:         "numeric",
		AnswerObject: store.Object{"value": 4},
		Tags:         []string{"arithmetic"},
	})

	// Object fields are merged key by key; absent fields are kept.
	q, _ = svc.UpdateQuestion(ctx, q.ID, store.QuestionPatch{
		AnswerObject: store.Object{"tolerance": 0},
	}, false)
	fmt.Println(len(q.AnswerObject), q.Tags)

	// Replace discards the stored object and clears absent lists.
	q, _ = svc.UpdateQuestion(ctx, q.ID, store.QuestionPatch{
		AnswerObject: store.Object{"value": 5},
	}, true)
	fmt.Println(len(q.AnswerObject), len(q.Tags))
	// Output:
	// 2 [arithmetic]
	// 1 0
}

func Example_tags() {
	svc, cleanup := tempBank()
	defer cleanup()
	ctx := context.Background()

	st, _ := svc.InsertStudent(ctx, store.Student{FirstName: "Ada", LastName: "Lovelace", StudentID: ptr("S1")})
	t, _ := svc.GetOrCreateTag(ctx, "Year 12")
	_, _ = svc.AssignTag(ctx, t.ID, store.KindStudent, st.ID)

	tags, _ := svc.Tags(ctx, &store.TagFilter{Kind: store.KindStudent, IDs: []string{st.ID}})
	fmt.Println(len(tags), tags[0].Text)

	// Filters match tag text as a case-insensitive substring.
	students, _ := svc.Students(ctx, &store.StudentFilter{Tags: []string{"year"}})
	fmt.Println(len(students), students[0].LastName)
	// Output:
	// 1 Year 12
	// 1 Lovelace
}

func Example_batch() {
	svc, cleanup := tempBank()
	defer cleanup()
	ctx := context.Background()

	// A failing batch writes nothing.
	err := svc.Batch(ctx, func(b *store.Batch) error {
		if _, err := b.InsertSubject(store.Subject{Name: "Physics"}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	fmt.Println(err)

	st, _ := svc.Stats(ctx)
	fmt.Println(st.Subjects)
	// Output:
	// abort
	// 0
}

func Example_answers() {
	svc, cleanup := tempBank()
	defer cleanup()
	ctx := context.Background()

	e, _ := svc.InsertExam(ctx, store.Exam{Name: ptr("Midterm")})
	st, _ := svc.InsertStudent(ctx, store.Student{FirstName: "Ada", LastName: "Lovelace"})
	in, _ := svc.InsertExamInstance(ctx, store.ExamInstance{
		ExamID:     e.ID,
		Seed:       42,
		Generated:  "2026-10-01T09:00:00Z",
		StudentIDs: []string{st.ID},
	})

	for scan := 1; scan <= 2; scan++ {
		_, err := svc.InsertExamInstanceAnswer(ctx, store.ExamInstanceAnswer{
			ExamInstanceID: in.ID,
			StudentID:      st.ID,
			ScanNumber:     scan,
			AnswerObject:   store.Object{"q1": "A"},
		})
		if err != nil {
			panic(err)
		}
	}

	one := 1
	first, _ := svc.ExamInstanceAnswers(ctx, in.ID, "", &one)
	all, _ := svc.ExamInstanceAnswers(ctx, in.ID, st.ID, nil)
	fmt.Println(len(first), len(all))
	// Output:
	// 1 2
}
