// Package httpapi exposes the Orato practice workflow over HTTP.
//
// The API is a small JSON surface: create a practice session, submit one
// recorded answer per question, download the finished report. Question
// generation, script drafting, and question read-aloud are thin wrappers
// over the corresponding providers.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orato-app/orato/internal/evaluate"
	"github.com/orato-app/orato/internal/health"
	"github.com/orato-app/orato/internal/observe"
	"github.com/orato-app/orato/internal/questions"
	"github.com/orato-app/orato/internal/session"
	"github.com/orato-app/orato/internal/store"
	"github.com/orato-app/orato/pkg/provider/tts"
)

// maxAudioBytes caps a single uploaded recording. 25 MiB matches the
// payload limit of the Whisper transcription API.
const maxAudioBytes = 25 << 20

// Server holds the handlers for the Orato HTTP API. Construct with [New];
// safe for concurrent use.
type Server struct {
	sessions  *session.Manager
	evaluator *evaluate.Evaluator
	generator *questions.Generator
	speech    tts.Provider
	reports   store.Store
	health    *health.Handler
	metrics   *observe.Metrics
}

// Option customises a [Server].
type Option func(*Server)

// WithGenerator enables the question generation and script endpoints.
func WithGenerator(g *questions.Generator) Option {
	return func(s *Server) { s.generator = g }
}

// WithSpeech enables the question read-aloud endpoint.
func WithSpeech(p tts.Provider) Option {
	return func(s *Server) { s.speech = p }
}

// WithReportStore persists finished reports and serves reports of sessions
// that no longer live in memory.
func WithReportStore(st store.Store) Option {
	return func(s *Server) { s.reports = st }
}

// WithHealth overrides the health handler. Defaults to a handler with no
// readiness checks.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) { s.health = h }
}

// WithMetrics attaches a metrics instance. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New creates a [Server]. sessions and evaluator are required; everything
// else degrades gracefully when absent.
func New(sessions *session.Manager, evaluator *evaluate.Evaluator, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		evaluator: evaluator,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.health == nil {
		s.health = health.New()
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	if err := s.metrics.ObserveActiveSessions(func() int64 {
		return int64(s.sessions.Len())
	}); err != nil {
		slog.Warn("active-session gauge registration failed", "err", err)
	}
	return s
}

// Handler returns the routed HTTP handler, including health probes and the
// Prometheus metrics endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(observe.Middleware(s.metrics))

	r.Get("/healthz", s.health.Healthz)
	r.Get("/readyz", s.health.Readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/sessions", s.createSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Delete("/", s.deleteSession)
			r.Get("/question", s.currentQuestion)
			r.Get("/question/audio", s.questionAudio)
			r.Post("/attempts", s.submitAttempt)
			r.Get("/report", s.sessionReport)
		})
		r.Post("/questions", s.generateQuestions)
		r.Post("/scripts", s.generateScript)
		r.Post("/scripts/review", s.reviewScript)
	})

	return r
}
