package config_test

import (
	"testing"
	"time"

	"github.com/orato-app/orato/internal/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			ListenAddr: ":8080",
			LogLevel:   config.LogInfo,
		},
		Providers: config.ProvidersConfig{
			LLM: config.ProviderEntry{Name: "openai", Model: "gpt-4o"},
			STT: config.ProviderEntry{Name: "openai", Model: "whisper-1"},
		},
		Evaluation: config.EvaluationConfig{
			STTTimeout:  30 * time.Second,
			STTAttempts: 2,
		},
	}
}

func TestDiff_NoChanges(t *testing.T) {
	t.Parallel()

	old, new := baseConfig(), baseConfig()
	d := config.Diff(old, new)
	if d.HasChanges() {
		t.Errorf("identical configs should produce no diff, got %+v", d)
	}
}

func TestDiff_LogLevel(t *testing.T) {
	t.Parallel()

	old, new := baseConfig(), baseConfig()
	new.Server.LogLevel = config.LogDebug

	d := config.Diff(old, new)
	if !d.LogLevelChanged {
		t.Error("LogLevelChanged should be true")
	}
	if d.NewLogLevel != config.LogDebug {
		t.Errorf("NewLogLevel: got %q, want %q", d.NewLogLevel, config.LogDebug)
	}
	if d.EvaluationChanged || d.ProvidersChanged {
		t.Errorf("unrelated flags set: %+v", d)
	}
	if !d.HasChanges() {
		t.Error("HasChanges should be true")
	}
}

func TestDiff_Evaluation(t *testing.T) {
	t.Parallel()

	old, new := baseConfig(), baseConfig()
	new.Evaluation.STTAttempts = 4

	d := config.Diff(old, new)
	if !d.EvaluationChanged {
		t.Error("EvaluationChanged should be true")
	}
	if d.NewEvaluation.STTAttempts != 4 {
		t.Errorf("NewEvaluation.STTAttempts: got %d, want 4", d.NewEvaluation.STTAttempts)
	}
	if d.LogLevelChanged || d.ProvidersChanged {
		t.Errorf("unrelated flags set: %+v", d)
	}
}

func TestDiff_Providers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   bool
	}{
		{
			name:   "llm model changed",
			mutate: func(c *config.Config) { c.Providers.LLM.Model = "gpt-4o-mini" },
			want:   true,
		},
		{
			name:   "stt swapped",
			mutate: func(c *config.Config) { c.Providers.STT.Name = "whisper-server" },
			want:   true,
		},
		{
			name: "fallback added",
			mutate: func(c *config.Config) {
				c.Providers.STTFallbacks = []config.ProviderEntry{{Name: "whisper-server"}}
			},
			want: true,
		},
		{
			name: "llm fallback added",
			mutate: func(c *config.Config) {
				c.Providers.LLMFallbacks = []config.ProviderEntry{{Name: "ollama"}}
			},
			want: true,
		},
		{
			name: "option-only change ignored",
			mutate: func(c *config.Config) {
				c.Providers.LLM.Options = map[string]any{"temperature": 0.5}
			},
			want: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			old, new := baseConfig(), baseConfig()
			tc.mutate(new)
			d := config.Diff(old, new)
			if d.ProvidersChanged != tc.want {
				t.Errorf("ProvidersChanged: got %v, want %v", d.ProvidersChanged, tc.want)
			}
		})
	}
}
