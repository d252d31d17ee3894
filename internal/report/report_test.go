package report

import (
	"reflect"
	"testing"
	"time"

	"github.com/orato-app/orato/pkg/analysis"
)

func TestExportRoundTrip(t *testing.T) {
	t.Parallel()

	sim := 87.5
	evals := []*Evaluation{
		{
			ID:             "r1",
			CreatedAt:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			Mode:           ModeInterview,
			QuestionNumber: 1,
			Question:       "세특 활동에서 배운 점은 무엇인가요?",
			Transcript:     "저는 데이터 분석 동아리에서...",
			TempoBPM:       112,
			Silence:        analysis.Profile{TotalDuration: 42.5, ActiveDuration: 31.0},
			Rubric:         RubricScores{Logic: 7, Sincerity: 8, Confidence: 6, Suitability: 7},
			Feedback:       "구체적 사례가 좋았습니다.",
		},
		{
			ID:             "r2",
			Mode:           ModeInterview,
			QuestionNumber: 2,
			Question:       "Why this major?",
			Transcript:     "",
			NoSpeech:       true,
			Similarity:     &sim,
		},
	}

	data, err := ExportJSON(evals)
	if err != nil {
		t.Fatalf("ExportJSON returned error: %v", err)
	}

	parsed, err := ParseExport(data)
	if err != nil {
		t.Fatalf("ParseExport returned error: %v", err)
	}
	if len(parsed) != len(evals) {
		t.Fatalf("parsed %d records, want %d", len(parsed), len(evals))
	}
	for i, e := range evals {
		if !reflect.DeepEqual(parsed[i], e.Export()) {
			t.Errorf("record %d = %+v, want %+v", i, parsed[i], e.Export())
		}
	}
}

func TestExportJSONEmpty(t *testing.T) {
	t.Parallel()

	data, err := ExportJSON(nil)
	if err != nil {
		t.Fatalf("ExportJSON(nil) returned error: %v", err)
	}
	parsed, err := ParseExport(data)
	if err != nil {
		t.Fatalf("ParseExport returned error: %v", err)
	}
	if len(parsed) != 0 {
		t.Errorf("parsed %d records, want 0", len(parsed))
	}
}

func TestModeIsValid(t *testing.T) {
	t.Parallel()

	if !ModeInterview.IsValid() || !ModePresentation.IsValid() {
		t.Error("built-in modes must be valid")
	}
	if Mode("karaoke").IsValid() {
		t.Error("unknown mode reported valid")
	}
}
