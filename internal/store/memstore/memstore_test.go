package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orato-app/orato/internal/report"
	"github.com/orato-app/orato/internal/store"
)

func TestReportRoundTrip(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	rep := store.Report{
		SessionID: "s1",
		Mode:      report.ModeInterview,
		CreatedAt: time.Now().UTC(),
		Records: []report.ExportRecord{
			{QuestionNumber: 1, Question: "q", Transcript: "t", Logic: 7},
		},
	}
	if err := s.SaveReport(ctx, rep); err != nil {
		t.Fatalf("SaveReport returned error: %v", err)
	}

	got, err := s.GetReport(ctx, "s1")
	if err != nil {
		t.Fatalf("GetReport returned error: %v", err)
	}
	if got.SessionID != "s1" || len(got.Records) != 1 || got.Records[0].Logic != 7 {
		t.Errorf("got %+v", got)
	}

	if _, err := s.GetReport(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSimilarAnswersOrdering(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	answers := []store.Answer{
		{ID: "exact", Embedding: []float32{1, 0, 0}},
		{ID: "close", Embedding: []float32{0.9, 0.1, 0}},
		{ID: "far", Embedding: []float32{0, 1, 0}},
	}
	for _, a := range answers {
		if err := s.IndexAnswer(ctx, a); err != nil {
			t.Fatalf("IndexAnswer returned error: %v", err)
		}
	}

	matches, err := s.SimilarAnswers(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("SimilarAnswers returned error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Answer.ID != "exact" || matches[1].Answer.ID != "close" {
		t.Errorf("order = [%s, %s], want [exact, close]", matches[0].Answer.ID, matches[1].Answer.ID)
	}
	if matches[0].Distance > 1e-9 {
		t.Errorf("exact match distance = %v, want ~0", matches[0].Distance)
	}
}

func TestIndexAnswerUpsert(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	_ = s.IndexAnswer(ctx, store.Answer{ID: "a", Transcript: "old", Embedding: []float32{1}})
	_ = s.IndexAnswer(ctx, store.Answer{ID: "a", Transcript: "new", Embedding: []float32{1}})

	matches, err := s.SimilarAnswers(ctx, []float32{1}, 10)
	if err != nil {
		t.Fatalf("SimilarAnswers returned error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1 after upsert", len(matches))
	}
	if matches[0].Answer.Transcript != "new" {
		t.Errorf("transcript = %q, want new", matches[0].Answer.Transcript)
	}
}
