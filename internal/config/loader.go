package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"llm":        {"openai", "anyllm"},
	"stt":        {"openai", "whisper-server"},
	"tts":        {"openai"},
	"embeddings": {"openai"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.TLS != nil {
		if cfg.Server.TLS.CertFile == "" || cfg.Server.TLS.KeyFile == "" {
			errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
		}
	}

	// Provider name validation — warn for unknown provider names.
	validateProviderName("llm", cfg.Providers.LLM.Name)
	validateProviderName("stt", cfg.Providers.STT.Name)
	validateProviderName("tts", cfg.Providers.TTS.Name)
	validateProviderName("embeddings", cfg.Providers.Embeddings.Name)
	for i, entry := range cfg.Providers.STTFallbacks {
		if entry.Name == "" {
			errs = append(errs, fmt.Errorf("providers.stt_fallbacks[%d].name is required", i))
			continue
		}
		validateProviderName("stt", entry.Name)
	}
	for i, entry := range cfg.Providers.LLMFallbacks {
		if entry.Name == "" {
			errs = append(errs, fmt.Errorf("providers.llm_fallbacks[%d].name is required", i))
			continue
		}
		validateProviderName("llm", entry.Name)
	}

	// The evaluation pipeline cannot run without transcription.
	if cfg.Providers.STT.Name == "" {
		errs = append(errs, errors.New("providers.stt is required"))
	}
	if cfg.Providers.LLM.Name == "" {
		slog.Warn("no LLM provider configured; rubric scoring and question generation will be unavailable")
	}

	// Embeddings ↔ storage dimensions
	if cfg.Providers.Embeddings.Name != "" && cfg.Storage.EmbeddingDimensions <= 0 {
		slog.Warn("providers.embeddings is configured but storage.embedding_dimensions is not set; defaulting to 1536")
	}
	if cfg.Storage.PostgresDSN == "" {
		slog.Warn("storage.postgres_dsn is empty; reports and the answer index will not survive restarts")
	}

	// Evaluation tuning
	if cfg.Evaluation.STTTimeout < 0 {
		errs = append(errs, fmt.Errorf("evaluation.stt_timeout %v must not be negative", cfg.Evaluation.STTTimeout))
	}
	if cfg.Evaluation.STTAttempts < 0 {
		errs = append(errs, fmt.Errorf("evaluation.stt_attempts %d must not be negative", cfg.Evaluation.STTAttempts))
	}
	if cfg.Evaluation.LLMTimeout < 0 {
		errs = append(errs, fmt.Errorf("evaluation.llm_timeout %v must not be negative", cfg.Evaluation.LLMTimeout))
	}
	if cfg.Evaluation.LLMAttempts < 0 {
		errs = append(errs, fmt.Errorf("evaluation.llm_attempts %d must not be negative", cfg.Evaluation.LLMAttempts))
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
