// batch.go groups several inserts into one transaction.
//
// Bundle import needs every entity of a bundle to land together or not at
// all. Batch exposes the same insert operations as the store but runs them
// on a shared transaction and holds change notifications until commit.

package store

import (
	"context"
	"database/sql"
)

// Batch is a unit of work passed to the function given to SQLiteStore.Batch.
// It must not be used after that function returns.
type Batch struct {
	s       *SQLiteStore
	ctx     context.Context
	tx      *sql.Tx
	changes []Change
}

// Batch runs fn inside one transaction. If fn returns an error nothing it
// wrote is kept and no change is reported.
func (s *SQLiteStore) Batch(ctx context.Context, fn func(b *Batch) error) error {
	var b *Batch
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		b = &Batch{s: s, ctx: ctx, tx: tx}
		return fn(b)
	})
	if err != nil {
		return err
	}
	s.notify(b.changes...)
	return nil
}

func (b *Batch) record(k Kind, id string) string {
	b.changes = append(b.changes, Change{Kind: k, ID: id, Op: OpInsert})
	return id
}

// InsertSubject inserts a subject and returns its new id.
func (b *Batch) InsertSubject(in Subject) (string, error) {
	id, err := b.s.insertSubject(b.ctx, b.tx, in)
	if err != nil {
		return "", err
	}
	return b.record(KindSubject, id), nil
}

// InsertQuestion inserts a question and returns its new id.
func (b *Batch) InsertQuestion(in Question) (string, error) {
	id, err := b.s.insertQuestion(b.ctx, b.tx, in)
	if err != nil {
		return "", err
	}
	return b.record(KindQuestion, id), nil
}

// InsertExam inserts an exam and returns its new id.
func (b *Batch) InsertExam(in Exam) (string, error) {
	id, err := b.s.insertExam(b.ctx, b.tx, in)
	if err != nil {
		return "", err
	}
	return b.record(KindExam, id), nil
}

// InsertStudent inserts a student and returns its new id.
func (b *Batch) InsertStudent(in Student) (string, error) {
	id, err := b.s.insertStudent(b.ctx, b.tx, in)
	if err != nil {
		return "", err
	}
	return b.record(KindStudent, id), nil
}

// InsertExamInstance inserts an instance and returns its new id.
func (b *Batch) InsertExamInstance(in ExamInstance) (string, error) {
	id, err := b.s.insertInstance(b.ctx, b.tx, in)
	if err != nil {
		return "", err
	}
	return b.record(KindExamInstance, id), nil
}

// InsertExamInstanceAnswer records an answer, overwriting any answer with
// the same key.
func (b *Batch) InsertExamInstanceAnswer(in ExamInstanceAnswer) error {
	if err := b.s.insertAnswer(b.ctx, b.tx, in); err != nil {
		return err
	}
	b.record(KindAnswer, AnswerKey(in.ExamInstanceID, in.StudentID, in.ScanNumber))
	return nil
}

// GetOrCreateTag resolves a tag by text inside the batch.
func (b *Batch) GetOrCreateTag(text string) (*Tag, error) {
	t, created, err := b.s.getOrCreateTag(b.ctx, b.tx, text)
	if err != nil {
		return nil, err
	}
	if created {
		b.record(KindTag, t.ID)
	}
	return t, nil
}
