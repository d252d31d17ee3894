// Package memstore is the in-memory store implementation, used for tests
// and single-process deployments without a database.
package memstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/orato-app/orato/internal/store"
)

// Store keeps reports and the answer index in process memory. Safe for
// concurrent use; contents are lost on restart.
type Store struct {
	mu      sync.RWMutex
	reports map[string]store.Report
	answers map[string]store.Answer
}

// Compile-time interface assertion.
var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		reports: make(map[string]store.Report),
		answers: make(map[string]store.Answer),
	}
}

// SaveReport implements [store.Store].
func (s *Store) SaveReport(_ context.Context, rep store.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[rep.SessionID] = rep
	return nil
}

// GetReport implements [store.Store].
func (s *Store) GetReport(_ context.Context, sessionID string) (*store.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rep, ok := s.reports[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: report %s", store.ErrNotFound, sessionID)
	}
	return &rep, nil
}

// IndexAnswer implements [store.Store].
func (s *Store) IndexAnswer(_ context.Context, ans store.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[ans.ID] = ans
	return nil
}

// SimilarAnswers implements [store.Store] with a linear cosine-distance
// scan. Fine for the index sizes a single process sees.
func (s *Store) SimilarAnswers(_ context.Context, embedding []float32, topK int) ([]store.AnswerMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]store.AnswerMatch, 0, len(s.answers))
	for _, ans := range s.answers {
		matches = append(matches, store.AnswerMatch{
			Answer:   ans,
			Distance: cosineDistance(embedding, ans.Embedding),
		})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Close implements [store.Store].
func (s *Store) Close() {}

// cosineDistance returns 1 - cosine similarity. Mismatched or zero vectors
// get the maximum distance 1.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
