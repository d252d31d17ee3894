// Package session tracks one user's practice run: the question list, the
// position within it, and the ordered evaluation records produced so far.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orato-app/orato/internal/report"
)

// ErrExhausted is returned by Advance when every question has been answered.
var ErrExhausted = errors.New("session: no questions remaining")

// Session is one practice run. A session is created with a fixed question
// list; each answered question appends exactly one evaluation record in
// order, so Records()[i] always corresponds to question i+1.
//
// All methods are safe for concurrent use.
type Session struct {
	ID        string
	Mode      report.Mode
	CreatedAt time.Time

	// Reference is the script to recite, "" when the session has none.
	// Fixed at creation.
	Reference string

	mu        sync.Mutex
	questions []string
	nextIdx   int
	records   []*report.Evaluation
}

func newSession(mode report.Mode, questions []string, reference string) *Session {
	qs := make([]string, len(questions))
	copy(qs, questions)
	return &Session{
		ID:        uuid.NewString(),
		Mode:      mode,
		CreatedAt: time.Now().UTC(),
		Reference: reference,
		questions: qs,
	}
}

// Questions returns a copy of the full question list.
func (s *Session) Questions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.questions))
	copy(out, s.questions)
	return out
}

// Current returns the 1-based number and text of the question awaiting an
// answer. ok is false when the session is exhausted or has no questions.
func (s *Session) Current() (number int, question string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nextIdx >= len(s.questions) {
		return 0, "", false
	}
	return s.nextIdx + 1, s.questions[s.nextIdx], true
}

// Advance records the evaluation for the current question and moves to the
// next one. The record's QuestionNumber and Question fields are filled in
// from the session's own state so callers cannot desynchronise them.
func (s *Session) Advance(eval *report.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nextIdx >= len(s.questions) {
		return ErrExhausted
	}
	eval.Mode = s.Mode
	eval.QuestionNumber = s.nextIdx + 1
	eval.Question = s.questions[s.nextIdx]
	s.records = append(s.records, eval)
	s.nextIdx++
	return nil
}

// Done reports whether every question has been answered.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextIdx >= len(s.questions)
}

// Records returns the evaluation records in answer order. The slice is a
// copy; the pointed-to records are shared.
func (s *Session) Records() []*report.Evaluation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*report.Evaluation, len(s.records))
	copy(out, s.records)
	return out
}

// ExportJSON renders the session's records in the downloadable report
// format. Exporting and re-parsing yields field-for-field equal records.
func (s *Session) ExportJSON() ([]byte, error) {
	return report.ExportJSON(s.Records())
}
