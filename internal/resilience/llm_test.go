package resilience

import (
	"context"
	"errors"
	"testing"

	"github.com/orato-app/orato/pkg/provider/llm"
	llmmock "github.com/orato-app/orato/pkg/provider/llm/mock"
)

func TestLLMFallbackPrimarySuccess(t *testing.T) {
	t.Parallel()

	primary := &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "primary"}}
	secondary := &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "fallback"}}

	fb := NewLLMFallback(primary, "primary", BreakerConfig{MaxFailures: 3})
	fb.AddFallback("secondary", secondary)

	resp, err := fb.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if resp.Content != "primary" {
		t.Errorf("content = %q, want primary", resp.Content)
	}
	if secondary.CallCount() != 0 {
		t.Errorf("secondary called %d times, want 0", secondary.CallCount())
	}
}

func TestLLMFallbackFailover(t *testing.T) {
	t.Parallel()

	primary := &llmmock.Provider{CompleteErr: errors.New("primary down")}
	secondary := &llmmock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "fallback"}}

	fb := NewLLMFallback(primary, "primary", BreakerConfig{MaxFailures: 3})
	fb.AddFallback("secondary", secondary)

	resp, err := fb.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if resp.Content != "fallback" {
		t.Errorf("content = %q, want fallback", resp.Content)
	}
	if primary.CallCount() != 1 {
		t.Errorf("primary called %d times, want 1", primary.CallCount())
	}
}

func TestLLMFallbackAllFail(t *testing.T) {
	t.Parallel()

	primary := &llmmock.Provider{CompleteErr: errors.New("down")}
	fb := NewLLMFallback(primary, "primary", BreakerConfig{MaxFailures: 3})

	_, err := fb.Complete(context.Background(), llm.CompletionRequest{})
	if !errors.Is(err, ErrAllFailed) {
		t.Errorf("err = %v, want ErrAllFailed", err)
	}
}
