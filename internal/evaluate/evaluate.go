// Package evaluate runs the full assessment of one recorded answer: decode
// the audio, extract acoustic metrics and the transcript in parallel, then
// layer on the mode-specific scores — recitation similarity against a
// reference script, or the interviewer rubric.
package evaluate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/orato-app/orato/internal/observe"
	"github.com/orato-app/orato/internal/report"
	"github.com/orato-app/orato/internal/resilience"
	"github.com/orato-app/orato/internal/rubric"
	"github.com/orato-app/orato/internal/store"
	"github.com/orato-app/orato/pkg/analysis"
	"github.com/orato-app/orato/pkg/audio"
	"github.com/orato-app/orato/pkg/provider/embeddings"
	"github.com/orato-app/orato/pkg/provider/stt"
	"github.com/orato-app/orato/pkg/textsim"
)

// similarLimit is how many similar past answers are attached to an
// interview evaluation when the answer index is available.
const similarLimit = 3

// Request describes one recorded answer to assess.
type Request struct {
	// Audio is the raw recording (WAV or Ogg/Opus).
	Audio []byte

	// ContentType hints the transcription backend at the container format.
	ContentType string

	// Mode selects presentation or interview scoring.
	Mode report.Mode

	// SessionID ties the answer back to its session in the answer index.
	// May be empty for one-off evaluations.
	SessionID string

	// QuestionNumber is the 1-based position of Question within its
	// session. Zero for one-off evaluations.
	QuestionNumber int

	// Question is the prompt the answer responds to. Required for rubric
	// scoring in interview mode.
	Question string

	// Reference is the script the answer should recite. When non-empty a
	// similarity score is computed.
	Reference string

	// Language is an optional BCP-47 hint for transcription.
	Language string
}

// Outcome is the evaluation plus the optional similar-answer context.
type Outcome struct {
	Evaluation *report.Evaluation
	Similar    []store.AnswerMatch
}

// Evaluator wires the providers and the store into the per-answer
// assessment pipeline. Construct with [New]; safe for concurrent use.
type Evaluator struct {
	stt      stt.Provider
	scorer   *rubric.Scorer
	embedder embeddings.Provider
	answers  store.Store
	metrics  *observe.Metrics
	retry    resilience.RetryConfig
	llmRetry resilience.RetryConfig
}

// Option customises an [Evaluator].
type Option func(*Evaluator)

// WithEmbeddings enables answer indexing and similar-answer lookup. Both p
// and s must be non-nil for the index to be used.
func WithEmbeddings(p embeddings.Provider, s store.Store) Option {
	return func(e *Evaluator) {
		e.embedder = p
		e.answers = s
	}
}

// WithMetrics attaches a metrics instance. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Evaluator) { e.metrics = m }
}

// WithRetry overrides the transcription retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(e *Evaluator) { e.retry = cfg }
}

// WithLLMRetry overrides the rubric-scoring retry policy.
func WithLLMRetry(cfg resilience.RetryConfig) Option {
	return func(e *Evaluator) { e.llmRetry = cfg }
}

// New creates an [Evaluator]. sttProvider is required; scorer may be nil
// when interview scoring is not needed.
func New(sttProvider stt.Provider, scorer *rubric.Scorer, opts ...Option) *Evaluator {
	e := &Evaluator{
		stt:      sttProvider,
		scorer:   scorer,
		retry:    resilience.RetryConfig{Attempts: 2, Timeout: 60 * time.Second},
		llmRetry: resilience.RetryConfig{Attempts: 2, Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = observe.DefaultMetrics()
	}
	return e
}

// Evaluate assesses one recorded answer. Acoustic analysis and
// transcription run concurrently; a transcription failure aborts the
// evaluation with [ErrExternalService] while an empty transcript is a valid
// no-speech result.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (*Outcome, error) {
	start := time.Now()
	log := observe.Logger(ctx)

	if len(req.Audio) == 0 {
		return nil, ErrNoAudio
	}
	if !req.Mode.IsValid() {
		return nil, fmt.Errorf("evaluate: unknown mode %q", req.Mode)
	}

	decodeStart := time.Now()
	_, decodeSpan := observe.StartStage(ctx, "decode")
	buf, err := audio.Decode(req.Audio)
	decodeSpan.End()
	if err != nil {
		e.metrics.RecordEvaluation(ctx, string(req.Mode), "decode_error")
		return nil, err
	}
	e.metrics.DecodeDuration.Record(ctx, time.Since(decodeStart).Seconds())

	var (
		acoustic   *analysis.Result
		transcript string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t0 := time.Now()
		_, span := observe.StartStage(gctx, "analyze")
		acoustic = analysis.Analyze(buf)
		span.End()
		e.metrics.AnalysisDuration.Record(gctx, time.Since(t0).Seconds())
		return nil
	})
	g.Go(func() error {
		t0 := time.Now()
		sctx, span := observe.StartStage(gctx, "transcribe")
		defer span.End()
		err := resilience.Retry(sctx, e.retry, func(ctx context.Context) error {
			res, err := e.stt.Transcribe(ctx, stt.Request{
				Audio:       req.Audio,
				ContentType: req.ContentType,
				Language:    req.Language,
			})
			if err != nil {
				return err
			}
			transcript = res.Text
			return nil
		})
		e.metrics.STTDuration.Record(gctx, time.Since(t0).Seconds())
		if err != nil {
			e.metrics.RecordProviderError(gctx, "stt", "transcribe")
			return fmt.Errorf("%w: transcription: %v", ErrExternalService, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		e.metrics.RecordEvaluation(ctx, string(req.Mode), "error")
		return nil, err
	}

	eval := &report.Evaluation{
		ID:             uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		Mode:           req.Mode,
		QuestionNumber: req.QuestionNumber,
		Question:       req.Question,
		Transcript:     transcript,
		NoSpeech:       strings.TrimSpace(transcript) == "",
		TempoBPM:       acoustic.TempoBPM,
		Silence:        acoustic.Silence,
	}

	// Recitation fidelity. An empty transcript against a non-empty
	// reference scores 0, it does not error.
	if req.Reference != "" {
		sim := textsim.Ratio(req.Reference, transcript)
		eval.Similarity = &sim
	}

	if req.Mode == report.ModeInterview && e.scorer != nil && req.Question != "" {
		t0 := time.Now()
		rctx, span := observe.StartStage(ctx, "rubric")
		var score *rubric.Score
		err := resilience.Retry(rctx, e.llmRetry, func(ctx context.Context) error {
			var serr error
			score, serr = e.scorer.Score(ctx, req.Question, transcript)
			return serr
		})
		span.End()
		e.metrics.LLMDuration.Record(ctx, time.Since(t0).Seconds())
		if err != nil {
			e.metrics.RecordProviderError(ctx, "llm", "rubric")
			e.metrics.RecordEvaluation(ctx, string(req.Mode), "error")
			return nil, fmt.Errorf("%w: rubric: %v", ErrExternalService, err)
		}
		eval.Rubric = score.Rubric
		eval.Feedback = score.Feedback
		eval.Warnings = score.Warnings
	}

	out := &Outcome{Evaluation: eval}
	if e.embedder != nil && e.answers != nil && !eval.NoSpeech {
		out.Similar = e.indexAndLookup(ctx, req.SessionID, eval)
	}

	e.metrics.EvaluationDuration.Record(ctx, time.Since(start).Seconds())
	e.metrics.RecordEvaluation(ctx, string(req.Mode), "ok")
	log.Info("answer evaluated",
		"mode", req.Mode,
		"no_speech", eval.NoSpeech,
		"duration", time.Since(start))
	return out, nil
}

// indexAndLookup embeds the transcript, fetches the closest past answers,
// then upserts this answer into the index. Failures here degrade the
// outcome (no similar answers) rather than failing the evaluation.
func (e *Evaluator) indexAndLookup(ctx context.Context, sessionID string, eval *report.Evaluation) []store.AnswerMatch {
	log := observe.Logger(ctx)
	ctx, span := observe.StartStage(ctx, "index")
	defer span.End()

	vec, err := e.embedder.Embed(ctx, eval.Transcript)
	if err != nil {
		e.metrics.RecordProviderError(ctx, "embeddings", "embed")
		log.Warn("embedding failed, skipping answer index", "error", err)
		return nil
	}

	matches, err := e.answers.SimilarAnswers(ctx, vec, similarLimit)
	if err != nil {
		log.Warn("similar-answer lookup failed", "error", err)
		matches = nil
	}

	if err := e.answers.IndexAnswer(ctx, store.Answer{
		ID:             eval.ID,
		SessionID:      sessionID,
		QuestionNumber: eval.QuestionNumber,
		Question:       eval.Question,
		Transcript:     eval.Transcript,
		Embedding:      vec,
		CreatedAt:      eval.CreatedAt,
	}); err != nil {
		log.Warn("answer indexing failed", "error", err)
	}

	log.Debug("answer indexed", "id", eval.ID, "similar", len(matches))
	return matches
}
