package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// EvaluationChanged is true when the pipeline retry tuning changed.
	EvaluationChanged bool
	NewEvaluation     EvaluationConfig

	// ProvidersChanged is true when any provider entry changed. Provider
	// swaps require a restart; this flag only drives a log warning.
	ProvidersChanged bool
}

// HasChanges reports whether any tracked field differs.
func (d ConfigDiff) HasChanges() bool {
	return d.LogLevelChanged || d.EvaluationChanged || d.ProvidersChanged
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Evaluation != new.Evaluation {
		d.EvaluationChanged = true
		d.NewEvaluation = new.Evaluation
	}

	if !providersEqual(old.Providers, new.Providers) {
		d.ProvidersChanged = true
	}

	return d
}

func providersEqual(a, b ProvidersConfig) bool {
	if !entryEqual(a.LLM, b.LLM) || !entryEqual(a.STT, b.STT) ||
		!entryEqual(a.TTS, b.TTS) || !entryEqual(a.Embeddings, b.Embeddings) {
		return false
	}
	return fallbacksEqual(a.STTFallbacks, b.STTFallbacks) &&
		fallbacksEqual(a.LLMFallbacks, b.LLMFallbacks)
}

func fallbacksEqual(a, b []ProviderEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !entryEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// entryEqual compares the scalar fields of two provider entries. The
// free-form Options map is ignored: option-only changes also require a
// restart and are not worth a deep comparison here.
func entryEqual(a, b ProviderEntry) bool {
	return a.Name == b.Name && a.APIKey == b.APIKey && a.BaseURL == b.BaseURL && a.Model == b.Model
}
