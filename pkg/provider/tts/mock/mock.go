// Package mock provides a test double for the tts.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/orato-app/orato/pkg/provider/tts"
)

// Provider is a mock implementation of tts.Provider. Safe for concurrent use.
type Provider struct {
	mu sync.Mutex

	// Audio is returned by Synthesize.
	Audio []byte

	// Err, if non-nil, is returned instead.
	Err error

	// Texts records every synthesized input.
	Texts []string
}

// Compile-time interface assertion.
var _ tts.Provider = (*Provider)(nil)

// Synthesize implements tts.Provider.
func (p *Provider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Texts = append(p.Texts, text)
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Audio, nil
}

// ContentType implements tts.Provider.
func (p *Provider) ContentType() string { return "audio/mpeg" }
