// Package mock provides a test double for the llm.Provider interface.
//
// Use Provider in unit tests to verify the prompts the pipeline sends and to
// feed controlled responses without a live backend:
//
//	p := &mock.Provider{
//	    CompleteResponse: &llm.CompletionResponse{Content: `{"logic": 7}`},
//	}
package mock

import (
	"context"
	"sync"

	"github.com/orato-app/orato/pkg/provider/llm"
)

// CompleteCall records a single invocation of Complete.
type CompleteCall struct {
	Ctx context.Context
	Req llm.CompletionRequest
}

// Provider is a mock implementation of llm.Provider. Zero-value response
// fields cause Complete to return an empty response; set CompleteErr to
// inject a failure. Safe for concurrent use.
type Provider struct {
	mu sync.Mutex

	// CompleteResponse is returned by Complete. When nil, an empty response
	// is returned instead.
	CompleteResponse *llm.CompletionResponse

	// CompleteResponses, when non-empty, overrides CompleteResponse and is
	// consumed one element per call. The final element is sticky.
	CompleteResponses []*llm.CompletionResponse

	// CompleteErr, if non-nil, is returned as the error from Complete.
	CompleteErr error

	// ErrsBeforeSuccess fails that many leading calls with CompleteErr
	// before succeeding. Used to exercise retry behaviour.
	ErrsBeforeSuccess int

	// CompleteCalls records every invocation.
	CompleteCalls []CompleteCall

	next  int
	calls int
}

// Compile-time interface assertion.
var _ llm.Provider = (*Provider)(nil)

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.CompleteCalls = append(p.CompleteCalls, CompleteCall{Ctx: ctx, Req: req})
	p.calls++
	if p.CompleteErr != nil && (p.ErrsBeforeSuccess == 0 || p.calls <= p.ErrsBeforeSuccess) {
		return nil, p.CompleteErr
	}
	if len(p.CompleteResponses) > 0 {
		resp := p.CompleteResponses[p.next]
		if p.next < len(p.CompleteResponses)-1 {
			p.next++
		}
		return resp, nil
	}
	if p.CompleteResponse != nil {
		return p.CompleteResponse, nil
	}
	return &llm.CompletionResponse{}, nil
}

// CallCount returns the number of Complete invocations so far.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Calls returns a copy of the recorded invocations.
func (p *Provider) Calls() []CompleteCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]CompleteCall, len(p.CompleteCalls))
	copy(out, p.CompleteCalls)
	return out
}
