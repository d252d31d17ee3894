// Command orato is the speech-coaching server: it evaluates recorded
// interview answers and presentation run-throughs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/orato-app/orato/internal/config"
	"github.com/orato-app/orato/internal/evaluate"
	"github.com/orato-app/orato/internal/health"
	"github.com/orato-app/orato/internal/httpapi"
	"github.com/orato-app/orato/internal/observe"
	"github.com/orato-app/orato/internal/questions"
	"github.com/orato-app/orato/internal/resilience"
	"github.com/orato-app/orato/internal/rubric"
	"github.com/orato-app/orato/internal/session"
	"github.com/orato-app/orato/internal/store"
	"github.com/orato-app/orato/internal/store/memstore"
	"github.com/orato-app/orato/internal/store/postgres"
	"github.com/orato-app/orato/pkg/provider/embeddings"
	oaembed "github.com/orato-app/orato/pkg/provider/embeddings/openai"
	"github.com/orato-app/orato/pkg/provider/llm"
	"github.com/orato-app/orato/pkg/provider/llm/anyllm"
	oallm "github.com/orato-app/orato/pkg/provider/llm/openai"
	"github.com/orato-app/orato/pkg/provider/stt"
	oastt "github.com/orato-app/orato/pkg/provider/stt/openai"
	"github.com/orato-app/orato/pkg/provider/stt/whisperserver"
	"github.com/orato-app/orato/pkg/provider/tts"
	oatts "github.com/orato-app/orato/pkg/provider/tts/openai"
)

// defaultEmbeddingDims matches text-embedding-3-small.
const defaultEmbeddingDims = 1536

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "orato: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "orato: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	// The level lives in a LevelVar so the config watcher can adjust it
	// without a restart.
	levelVar := new(slog.LevelVar)
	levelVar.Set(slogLevel(cfg.Server.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar}))
	slog.SetDefault(logger)

	slog.Info("orato starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	telemetry, err := observe.Setup(observe.TelemetryConfig{ServiceName: "orato"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	metrics := observe.DefaultMetrics()

	// ── Providers ─────────────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	providers, err := buildProviders(cfg, reg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}
	if providers.STT == nil {
		slog.Error("no usable transcription provider configured")
		return 1
	}

	// ── Store ─────────────────────────────────────────────────────────────────
	var st store.Store
	if cfg.Storage.PostgresDSN != "" {
		dims := cfg.Storage.EmbeddingDimensions
		if dims <= 0 {
			dims = defaultEmbeddingDims
		}
		pg, err := postgres.New(ctx, cfg.Storage.PostgresDSN, dims)
		if err != nil {
			slog.Error("failed to connect to postgres", "err", err)
			return 1
		}
		st = pg
		slog.Info("using postgres store", "embedding_dimensions", dims)
	} else {
		st = memstore.New()
		slog.Info("using in-memory store; reports will not survive restarts")
	}
	defer st.Close()

	// ── Evaluation pipeline ───────────────────────────────────────────────────
	llmRetry := llmRetryConfig(cfg.Evaluation)

	var scorer *rubric.Scorer
	var generator *questions.Generator
	if providers.LLM != nil {
		scorer = rubric.NewScorer(providers.LLM)
		generator = questions.NewGenerator(providers.LLM, questions.WithRetry(llmRetry))
	}

	evalOpts := []evaluate.Option{
		evaluate.WithMetrics(metrics),
		evaluate.WithRetry(sttRetryConfig(cfg.Evaluation)),
		evaluate.WithLLMRetry(llmRetry),
	}
	if providers.Embeddings != nil {
		evalOpts = append(evalOpts, evaluate.WithEmbeddings(providers.Embeddings, st))
	}
	evaluator := evaluate.New(providers.STT, scorer, evalOpts...)

	// ── HTTP API ──────────────────────────────────────────────────────────────
	checkers := []health.Checker{
		{Name: "store", Check: storeCheck(st)},
	}
	apiOpts := []httpapi.Option{
		httpapi.WithReportStore(st),
		httpapi.WithHealth(health.New(checkers...)),
		httpapi.WithMetrics(metrics),
	}
	if generator != nil {
		apiOpts = append(apiOpts, httpapi.WithGenerator(generator))
	}
	if providers.TTS != nil {
		apiOpts = append(apiOpts, httpapi.WithSpeech(providers.TTS))
	}
	api := httpapi.New(session.NewManager(), evaluator, apiOpts...)

	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ── Config watcher ────────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		applyReload(levelVar, old, new)
	})
	if err != nil {
		slog.Warn("config watcher disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	// ── Serve ─────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr, "tls", cfg.Server.TLS != nil)
		var err error
		if cfg.Server.TLS != nil {
			err = srv.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping…")
	case err := <-errCh:
		slog.Error("http server error", "err", err)
		return 1
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		slog.Warn("telemetry shutdown error", "err", err)
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// providerSet holds the instantiated external providers.
type providerSet struct {
	LLM        llm.Provider
	STT        stt.Provider
	TTS        tts.Provider
	Embeddings embeddings.Provider
}

// registerBuiltinProviders wires the provider factories that ship with Orato
// into reg.
func registerBuiltinProviders(reg *config.Registry) {
	// ── LLM ───────────────────────────────────────────────────────────────────

	reg.RegisterLLM("openai", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []oallm.Option
		if entry.BaseURL != "" {
			opts = append(opts, oallm.WithBaseURL(entry.BaseURL))
		}
		return oallm.New(entry.APIKey, entry.Model, opts...)
	})

	// anyllm routes to whichever backend options.provider names (ollama,
	// anthropic, mistral, …).
	reg.RegisterLLM("anyllm", func(entry config.ProviderEntry) (llm.Provider, error) {
		backend := optString(entry.Options, "provider")
		if backend == "" {
			backend = "openai"
		}
		var opts []anyllmlib.Option
		if entry.APIKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
		}
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New(backend, entry.Model, opts...)
	})

	// ── STT ───────────────────────────────────────────────────────────────────

	reg.RegisterSTT("openai", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []oastt.Option
		if entry.BaseURL != "" {
			opts = append(opts, oastt.WithBaseURL(entry.BaseURL))
		}
		return oastt.New(entry.APIKey, entry.Model, opts...)
	})

	reg.RegisterSTT("whisper-server", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []whisperserver.Option
		if entry.Model != "" {
			opts = append(opts, whisperserver.WithModel(entry.Model))
		}
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisperserver.WithLanguage(lang))
		}
		return whisperserver.New(entry.BaseURL, opts...)
	})

	// ── TTS ───────────────────────────────────────────────────────────────────

	reg.RegisterTTS("openai", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []oatts.Option
		if entry.BaseURL != "" {
			opts = append(opts, oatts.WithBaseURL(entry.BaseURL))
		}
		if voice := optString(entry.Options, "voice"); voice != "" {
			opts = append(opts, oatts.WithVoice(voice))
		}
		return oatts.New(entry.APIKey, entry.Model, opts...)
	})

	// ── Embeddings ────────────────────────────────────────────────────────────

	reg.RegisterEmbeddings("openai", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		var opts []oaembed.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaembed.WithBaseURL(entry.BaseURL))
		}
		if dims := optInt(entry.Options, "dimensions"); dims > 0 {
			opts = append(opts, oaembed.WithDimensions(dims))
		}
		return oaembed.New(entry.APIKey, entry.Model, opts...)
	})
}

// buildProviders instantiates the providers named in cfg. The STT and LLM
// providers are wrapped in failover groups when fallbacks are configured.
func buildProviders(cfg *config.Config, reg *config.Registry) (*providerSet, error) {
	ps := &providerSet{}

	if name := cfg.Providers.LLM.Name; name != "" {
		p, err := reg.CreateLLM(cfg.Providers.LLM)
		if err != nil {
			return nil, fmt.Errorf("create llm provider %q: %w", name, err)
		}
		ps.LLM = p
		slog.Info("provider created", "kind", "llm", "name", name)

		if len(cfg.Providers.LLMFallbacks) > 0 {
			fb := resilience.NewLLMFallback(p, name, resilience.BreakerConfig{})
			for _, entry := range cfg.Providers.LLMFallbacks {
				fp, err := reg.CreateLLM(entry)
				if err != nil {
					return nil, fmt.Errorf("create llm fallback %q: %w", entry.Name, err)
				}
				fb.AddFallback(entry.Name, fp)
				slog.Info("provider created", "kind", "llm", "name", entry.Name, "role", "fallback")
			}
			ps.LLM = fb
		}
	}

	if name := cfg.Providers.STT.Name; name != "" {
		p, err := reg.CreateSTT(cfg.Providers.STT)
		if err != nil {
			return nil, fmt.Errorf("create stt provider %q: %w", name, err)
		}
		ps.STT = p
		slog.Info("provider created", "kind", "stt", "name", name)

		if len(cfg.Providers.STTFallbacks) > 0 {
			fb := resilience.NewSTTFallback(p, name, resilience.BreakerConfig{})
			for _, entry := range cfg.Providers.STTFallbacks {
				fp, err := reg.CreateSTT(entry)
				if err != nil {
					return nil, fmt.Errorf("create stt fallback %q: %w", entry.Name, err)
				}
				fb.AddFallback(entry.Name, fp)
				slog.Info("provider created", "kind", "stt", "name", entry.Name, "role", "fallback")
			}
			ps.STT = fb
		}
	}

	if name := cfg.Providers.TTS.Name; name != "" {
		p, err := reg.CreateTTS(cfg.Providers.TTS)
		if err != nil {
			return nil, fmt.Errorf("create tts provider %q: %w", name, err)
		}
		ps.TTS = p
		slog.Info("provider created", "kind", "tts", "name", name)
	}

	if name := cfg.Providers.Embeddings.Name; name != "" {
		p, err := reg.CreateEmbeddings(cfg.Providers.Embeddings)
		if err != nil {
			return nil, fmt.Errorf("create embeddings provider %q: %w", name, err)
		}
		ps.Embeddings = p
		slog.Info("provider created", "kind", "embeddings", "name", name)
	}

	return ps, nil
}

// ── Hot reload ────────────────────────────────────────────────────────────────

// applyReload applies the hot-reloadable parts of a config change and warns
// about the rest.
func applyReload(levelVar *slog.LevelVar, old, new *config.Config) {
	d := config.Diff(old, new)
	if !d.HasChanges() {
		return
	}
	if d.LogLevelChanged {
		levelVar.Set(slogLevel(d.NewLogLevel))
		slog.Info("log level updated", "level", d.NewLogLevel)
	}
	if d.EvaluationChanged {
		slog.Warn("evaluation tuning changed in config; restart to apply",
			"stt_timeout", d.NewEvaluation.STTTimeout,
			"stt_attempts", d.NewEvaluation.STTAttempts,
			"llm_timeout", d.NewEvaluation.LLMTimeout,
			"llm_attempts", d.NewEvaluation.LLMAttempts,
		)
	}
	if d.ProvidersChanged {
		slog.Warn("provider configuration changed; restart to apply")
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func sttRetryConfig(ec config.EvaluationConfig) resilience.RetryConfig {
	cfg := resilience.RetryConfig{Attempts: 2, Timeout: 60 * time.Second}
	if ec.STTAttempts > 0 {
		cfg.Attempts = ec.STTAttempts
	}
	if ec.STTTimeout > 0 {
		cfg.Timeout = ec.STTTimeout
	}
	return cfg
}

func llmRetryConfig(ec config.EvaluationConfig) resilience.RetryConfig {
	cfg := resilience.RetryConfig{Attempts: 2, Timeout: 60 * time.Second}
	if ec.LLMAttempts > 0 {
		cfg.Attempts = ec.LLMAttempts
	}
	if ec.LLMTimeout > 0 {
		cfg.Timeout = ec.LLMTimeout
	}
	return cfg
}

// storeCheck probes the store with a lookup of an ID that cannot exist;
// ErrNotFound means the round trip worked.
func storeCheck(st store.Store) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := st.GetReport(ctx, "00000000-0000-0000-0000-000000000000")
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
}

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// optString extracts a string value from a provider Options map.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	s, _ := opts[key].(string)
	return s
}

// optInt extracts an integer value from a provider Options map. YAML decodes
// bare numbers as int.
func optInt(opts map[string]any, key string) int {
	if opts == nil {
		return 0
	}
	switch v := opts[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
