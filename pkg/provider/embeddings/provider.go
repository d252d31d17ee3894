// Package embeddings defines the Provider interface for text-embedding
// backends. Embeddings power the similar-answer lookup in the Postgres
// record store: each stored transcript is embedded so later answers can be
// compared against a candidate's history.
package embeddings

import "context"

// Provider is the abstraction over any embeddings backend.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Embed returns the embedding vector for text. The dimensionality is
	// fixed per backend/model and must be consistent across calls.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions reports the embedding vector length this provider produces.
	Dimensions() int
}
