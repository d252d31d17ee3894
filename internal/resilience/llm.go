package resilience

import (
	"context"

	"github.com/orato-app/orato/pkg/provider/llm"
)

// LLMFallback implements [llm.Provider] across multiple completion
// backends with per-backend breakers.
type LLMFallback struct {
	group *Group[llm.Provider]
}

// Compile-time interface assertion.
var _ llm.Provider = (*LLMFallback)(nil)

func NewLLMFallback(primary llm.Provider, primaryName string, cfg BreakerConfig) *LLMFallback {
	return &LLMFallback{group: NewGroup(primary, primaryName, cfg)}
}

// AddFallback registers a further completion backend.
func (f *LLMFallback) AddFallback(name string, p llm.Provider) {
	f.group.Add(name, p)
}

// Complete routes the request to the first healthy backend.
func (f *LLMFallback) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return DoWithResult(f.group, func(p llm.Provider) (*llm.CompletionResponse, error) {
		return p.Complete(ctx, req)
	})
}
