package session

import (
	"errors"
	"reflect"
	"testing"

	"github.com/orato-app/orato/internal/report"
)

func TestManagerCreateAndGet(t *testing.T) {
	t.Parallel()

	m := NewManager()
	s, err := m.Create(report.ModeInterview, []string{"q1", "q2"}, "")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if s.ID == "" {
		t.Error("session ID is empty")
	}

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != s {
		t.Error("Get returned a different session")
	}

	if _, err := m.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestManagerCreateValidation(t *testing.T) {
	t.Parallel()

	m := NewManager()
	if _, err := m.Create("karaoke", []string{"q"}, ""); err == nil {
		t.Error("expected error for unknown mode")
	}
	if _, err := m.Create(report.ModeInterview, nil, ""); err == nil {
		t.Error("expected error for empty question list")
	}
}

func TestSessionAdvanceOrder(t *testing.T) {
	t.Parallel()

	m := NewManager()
	s, err := m.Create(report.ModeInterview, []string{"first?", "second?"}, "")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	num, q, ok := s.Current()
	if !ok || num != 1 || q != "first?" {
		t.Fatalf("Current() = (%d, %q, %v), want (1, first?, true)", num, q, ok)
	}

	if err := s.Advance(&report.Evaluation{Transcript: "a1"}); err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}
	if err := s.Advance(&report.Evaluation{Transcript: "a2"}); err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}
	if !s.Done() {
		t.Error("session should be done after answering every question")
	}
	if err := s.Advance(&report.Evaluation{}); !errors.Is(err, ErrExhausted) {
		t.Errorf("Advance past end = %v, want ErrExhausted", err)
	}

	recs := s.Records()
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	for i, rec := range recs {
		if rec.QuestionNumber != i+1 {
			t.Errorf("record %d QuestionNumber = %d, want %d", i, rec.QuestionNumber, i+1)
		}
	}
	if recs[0].Question != "first?" || recs[1].Question != "second?" {
		t.Errorf("question text not stamped from session state: %q, %q", recs[0].Question, recs[1].Question)
	}
}

func TestSessionExportRoundTrip(t *testing.T) {
	t.Parallel()

	m := NewManager()
	s, err := m.Create(report.ModeInterview, []string{"지원 동기는?"}, "")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	eval := &report.Evaluation{
		Transcript: "저는 ...",
		Rubric:     report.RubricScores{Logic: 7, Sincerity: 8, Confidence: 6, Suitability: 7},
		Feedback:   "좋은 답변입니다.",
	}
	if err := s.Advance(eval); err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}

	data, err := s.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON returned error: %v", err)
	}
	parsed, err := report.ParseExport(data)
	if err != nil {
		t.Fatalf("ParseExport returned error: %v", err)
	}
	if len(parsed) != 1 {
		t.Fatalf("parsed %d records, want 1", len(parsed))
	}
	if !reflect.DeepEqual(parsed[0], eval.Export()) {
		t.Errorf("round trip = %+v, want %+v", parsed[0], eval.Export())
	}
}

func TestManagerRemove(t *testing.T) {
	t.Parallel()

	m := NewManager()
	s, _ := m.Create(report.ModeInterview, []string{"q"}, "")
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
	m.Remove(s.ID)
	if m.Len() != 0 {
		t.Errorf("Len after Remove = %d, want 0", m.Len())
	}
	m.Remove("nope")
}
