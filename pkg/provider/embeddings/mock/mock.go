// Package mock provides a test double for the embeddings.Provider interface.
package mock

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/orato-app/orato/pkg/provider/embeddings"
)

// Provider is a mock implementation of embeddings.Provider. When Vector is
// nil it derives a deterministic pseudo-embedding from the input text so
// distinct texts map to distinct vectors. Safe for concurrent use.
type Provider struct {
	mu sync.Mutex

	// Vector, when set, is returned for every call.
	Vector []float32

	// Err, if non-nil, is returned instead.
	Err error

	// Dims is the reported dimensionality. Defaults to 8.
	Dims int

	// Texts records every embedded input.
	Texts []string
}

// Compile-time interface assertion.
var _ embeddings.Provider = (*Provider)(nil)

// Embed implements embeddings.Provider.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Texts = append(p.Texts, text)
	if p.Err != nil {
		return nil, p.Err
	}
	if p.Vector != nil {
		return p.Vector, nil
	}

	dims := p.Dims
	if dims == 0 {
		dims = 8
	}
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()
	out := make([]float32, dims)
	for i := range out {
		seed = seed*1664525 + 1013904223
		out[i] = float32(seed%1000)/1000 - 0.5
	}
	return out, nil
}

// Dimensions implements embeddings.Provider.
func (p *Provider) Dimensions() int {
	if p.Dims == 0 {
		return 8
	}
	return p.Dims
}
