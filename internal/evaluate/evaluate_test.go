package evaluate

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/orato-app/orato/internal/observe"
	"github.com/orato-app/orato/internal/report"
	"github.com/orato-app/orato/internal/resilience"
	"github.com/orato-app/orato/internal/rubric"
	"github.com/orato-app/orato/internal/store/memstore"
	"github.com/orato-app/orato/pkg/audio"
	embmock "github.com/orato-app/orato/pkg/provider/embeddings/mock"
	"github.com/orato-app/orato/pkg/provider/llm"
	llmmock "github.com/orato-app/orato/pkg/provider/llm/mock"
	sttmock "github.com/orato-app/orato/pkg/provider/stt/mock"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// toneWAV returns a one-second 220 Hz mono tone encoded as 16-bit WAV.
func toneWAV(t *testing.T) []byte {
	t.Helper()
	const rate = 16000
	samples := make([]float64, rate)
	for i := range samples {
		samples[i] = 0.4 * math.Sin(2*math.Pi*220*float64(i)/rate)
	}
	return audio.EncodeWAV(samples, rate)
}

func testMetrics(t *testing.T) *observe.Metrics {
	t.Helper()
	mp := sdkmetric.NewMeterProvider()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m
}

func goodScorer() *rubric.Scorer {
	return rubric.NewScorer(&llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{
			Content: `{"logic": 7, "sincerity": 8, "confidence": 6, "suitability": 7, "feedback": "좋은 답변입니다."}`,
		},
	})
}

func TestEvaluateInterview(t *testing.T) {
	t.Parallel()

	sttP := &sttmock.Provider{Text: "저는 데이터 분석 동아리에서 활동했습니다."}
	e := New(sttP, goodScorer(), WithMetrics(testMetrics(t)))

	out, err := e.Evaluate(context.Background(), Request{
		Audio:       toneWAV(t),
		ContentType: "audio/wav",
		Mode:        report.ModeInterview,
		Question:    "동아리 활동에서 배운 점은?",
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	eval := out.Evaluation
	if eval.ID == "" {
		t.Error("evaluation ID is empty")
	}
	if eval.NoSpeech {
		t.Error("NoSpeech set despite a non-empty transcript")
	}
	want := report.RubricScores{Logic: 7, Sincerity: 8, Confidence: 6, Suitability: 7}
	if eval.Rubric != want {
		t.Errorf("rubric = %+v, want %+v", eval.Rubric, want)
	}
	if eval.Feedback == "" {
		t.Error("feedback is empty")
	}
	if eval.Similarity != nil {
		t.Error("similarity set without a reference script")
	}
	if eval.Silence.TotalDuration <= 0 {
		t.Error("silence profile missing")
	}
}

func TestEvaluateRubricClamping(t *testing.T) {
	t.Parallel()

	scorer := rubric.NewScorer(&llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{
			Content: `{"logic": 12, "sincerity": -1, "confidence": 7}`,
		},
	})
	e := New(&sttmock.Provider{Text: "답변"}, scorer, WithMetrics(testMetrics(t)))

	out, err := e.Evaluate(context.Background(), Request{
		Audio:    toneWAV(t),
		Mode:     report.ModeInterview,
		Question: "q",
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	want := report.RubricScores{Logic: 0, Sincerity: 0, Confidence: 7, Suitability: 0}
	if out.Evaluation.Rubric != want {
		t.Errorf("rubric = %+v, want %+v", out.Evaluation.Rubric, want)
	}
	if len(out.Evaluation.Warnings) == 0 {
		t.Error("expected warnings for clamped and missing fields")
	}
}

func TestEvaluatePresentationSimilarity(t *testing.T) {
	t.Parallel()

	sttP := &sttmock.Provider{Text: "hello world"}
	e := New(sttP, nil, WithMetrics(testMetrics(t)))

	out, err := e.Evaluate(context.Background(), Request{
		Audio:     toneWAV(t),
		Mode:      report.ModePresentation,
		Reference: "hello world",
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if out.Evaluation.Similarity == nil {
		t.Fatal("similarity not computed despite reference")
	}
	if *out.Evaluation.Similarity != 100 {
		t.Errorf("similarity = %v, want 100", *out.Evaluation.Similarity)
	}
}

func TestEvaluateEmptyTranscript(t *testing.T) {
	t.Parallel()

	sttP := &sttmock.Provider{Text: ""}
	e := New(sttP, nil, WithMetrics(testMetrics(t)))

	out, err := e.Evaluate(context.Background(), Request{
		Audio:     toneWAV(t),
		Mode:      report.ModePresentation,
		Reference: "the full script text",
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !out.Evaluation.NoSpeech {
		t.Error("NoSpeech not set for an empty transcript")
	}
	if out.Evaluation.Similarity == nil || *out.Evaluation.Similarity != 0 {
		t.Errorf("similarity = %v, want 0 for empty transcript", out.Evaluation.Similarity)
	}
}

func TestEvaluateDecodeError(t *testing.T) {
	t.Parallel()

	e := New(&sttmock.Provider{}, nil, WithMetrics(testMetrics(t)))

	_, err := e.Evaluate(context.Background(), Request{
		Audio: []byte("not audio at all"),
		Mode:  report.ModePresentation,
	})
	if !errors.Is(err, audio.ErrDecode) {
		t.Errorf("err = %v, want audio.ErrDecode", err)
	}
}

func TestEvaluateNoAudio(t *testing.T) {
	t.Parallel()

	e := New(&sttmock.Provider{}, nil, WithMetrics(testMetrics(t)))
	if _, err := e.Evaluate(context.Background(), Request{Mode: report.ModeInterview}); !errors.Is(err, ErrNoAudio) {
		t.Errorf("err = %v, want ErrNoAudio", err)
	}
}

func TestEvaluateSTTRetry(t *testing.T) {
	t.Parallel()

	sttP := &sttmock.Provider{
		Text:              "after retry",
		Err:               errors.New("transient"),
		ErrsBeforeSuccess: 1,
	}
	e := New(sttP, nil,
		WithMetrics(testMetrics(t)),
		WithRetry(resilience.RetryConfig{Attempts: 2, Backoff: 1}))

	out, err := e.Evaluate(context.Background(), Request{
		Audio: toneWAV(t),
		Mode:  report.ModePresentation,
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if out.Evaluation.Transcript != "after retry" {
		t.Errorf("transcript = %q", out.Evaluation.Transcript)
	}
	if sttP.CallCount() != 2 {
		t.Errorf("stt called %d times, want 2", sttP.CallCount())
	}
}

func TestEvaluateSTTFailure(t *testing.T) {
	t.Parallel()

	sttP := &sttmock.Provider{Err: errors.New("upstream down")}
	e := New(sttP, nil,
		WithMetrics(testMetrics(t)),
		WithRetry(resilience.RetryConfig{Attempts: 2, Backoff: 1}))

	_, err := e.Evaluate(context.Background(), Request{
		Audio: toneWAV(t),
		Mode:  report.ModePresentation,
	})
	if !errors.Is(err, ErrExternalService) {
		t.Errorf("err = %v, want ErrExternalService", err)
	}
}

func TestEvaluateIndexesAnswers(t *testing.T) {
	t.Parallel()

	st := memstore.New()
	emb := &embmock.Provider{}
	e := New(&sttmock.Provider{Text: "첫 번째 답변"}, goodScorer(),
		WithMetrics(testMetrics(t)),
		WithEmbeddings(emb, st))

	ctx := context.Background()
	out1, err := e.Evaluate(ctx, Request{
		Audio:          toneWAV(t),
		Mode:           report.ModeInterview,
		SessionID:      "sess-1",
		QuestionNumber: 1,
		Question:       "q",
	})
	if err != nil {
		t.Fatalf("first Evaluate: %v", err)
	}
	if len(out1.Similar) != 0 {
		t.Errorf("first answer found %d similar answers, want 0", len(out1.Similar))
	}

	out2, err := e.Evaluate(ctx, Request{
		Audio:          toneWAV(t),
		Mode:           report.ModeInterview,
		SessionID:      "sess-1",
		QuestionNumber: 2,
		Question:       "q",
	})
	if err != nil {
		t.Fatalf("second Evaluate: %v", err)
	}
	if len(out2.Similar) != 1 {
		t.Fatalf("second answer found %d similar answers, want 1", len(out2.Similar))
	}

	// The indexed answer must link back to its session and question so a
	// match can be traced to its origin.
	got := out2.Similar[0].Answer
	if got.ID != out1.Evaluation.ID {
		t.Errorf("similar answer ID = %s, want %s", got.ID, out1.Evaluation.ID)
	}
	if got.SessionID != "sess-1" {
		t.Errorf("similar answer SessionID = %q, want sess-1", got.SessionID)
	}
	if got.QuestionNumber != 1 {
		t.Errorf("similar answer QuestionNumber = %d, want 1", got.QuestionNumber)
	}
}

func TestEvaluateRubricRetry(t *testing.T) {
	t.Parallel()

	llmP := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{
			Content: `{"logic": 7, "sincerity": 8, "confidence": 6, "suitability": 7, "feedback": "좋아요"}`,
		},
		CompleteErr:       errors.New("transient"),
		ErrsBeforeSuccess: 1,
	}
	e := New(&sttmock.Provider{Text: "답변"}, rubric.NewScorer(llmP),
		WithMetrics(testMetrics(t)),
		WithLLMRetry(resilience.RetryConfig{Attempts: 2, Backoff: 1}))

	out, err := e.Evaluate(context.Background(), Request{
		Audio:    toneWAV(t),
		Mode:     report.ModeInterview,
		Question: "q",
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	want := report.RubricScores{Logic: 7, Sincerity: 8, Confidence: 6, Suitability: 7}
	if out.Evaluation.Rubric != want {
		t.Errorf("rubric = %+v, want %+v", out.Evaluation.Rubric, want)
	}
	if llmP.CallCount() != 2 {
		t.Errorf("llm called %d times, want 2", llmP.CallCount())
	}
}

func TestEvaluateRubricFailure(t *testing.T) {
	t.Parallel()

	llmP := &llmmock.Provider{CompleteErr: errors.New("upstream down")}
	e := New(&sttmock.Provider{Text: "답변"}, rubric.NewScorer(llmP),
		WithMetrics(testMetrics(t)),
		WithLLMRetry(resilience.RetryConfig{Attempts: 2, Backoff: 1}))

	_, err := e.Evaluate(context.Background(), Request{
		Audio:    toneWAV(t),
		Mode:     report.ModeInterview,
		Question: "q",
	})
	if !errors.Is(err, ErrExternalService) {
		t.Errorf("err = %v, want ErrExternalService", err)
	}
	if llmP.CallCount() != 2 {
		t.Errorf("llm called %d times, want 2 (one retry)", llmP.CallCount())
	}
}

func TestEvaluateUnknownMode(t *testing.T) {
	t.Parallel()

	e := New(&sttmock.Provider{}, nil, WithMetrics(testMetrics(t)))
	if _, err := e.Evaluate(context.Background(), Request{Audio: toneWAV(t), Mode: "karaoke"}); err == nil {
		t.Error("expected error for unknown mode")
	}
}
