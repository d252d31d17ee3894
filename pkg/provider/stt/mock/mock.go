// Package mock provides a test double for the stt.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/orato-app/orato/pkg/provider/stt"
)

// Provider is a mock implementation of stt.Provider. The zero value returns
// an empty transcript; set Text or Err to control behaviour. Safe for
// concurrent use.
type Provider struct {
	mu sync.Mutex

	// Text is returned as the transcript for every call.
	Text string

	// Err, if non-nil, is returned instead of a result.
	Err error

	// ErrsBeforeSuccess fails that many leading calls with Err before
	// succeeding. Used to exercise retry behaviour.
	ErrsBeforeSuccess int

	// Requests records every invocation.
	Requests []stt.Request

	calls int
}

// Compile-time interface assertion.
var _ stt.Provider = (*Provider)(nil)

// Transcribe implements stt.Provider.
func (p *Provider) Transcribe(ctx context.Context, req stt.Request) (stt.Result, error) {
	if err := ctx.Err(); err != nil {
		return stt.Result{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.Requests = append(p.Requests, req)
	p.calls++

	if p.Err != nil && (p.ErrsBeforeSuccess == 0 || p.calls <= p.ErrsBeforeSuccess) {
		return stt.Result{}, p.Err
	}
	return stt.Result{Text: p.Text}, nil
}

// CallCount returns the number of Transcribe invocations so far.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
