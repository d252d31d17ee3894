package resilience

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllFailed is returned when every backend in a [Group] fails or sits
// behind an open breaker.
var ErrAllFailed = errors.New("resilience: all backends failed")

type entry[T any] struct {
	name    string
	value   T
	breaker *Breaker
}

// Group holds ordered equivalent backends of one provider type, each behind
// its own [Breaker]. Calls go to the first healthy backend; on failure the
// next is tried in registration order.
type Group[T any] struct {
	entries []entry[T]
	cfg     BreakerConfig
}

// NewGroup creates a [Group] with primary as the preferred backend. cfg.Name
// is overridden per entry.
func NewGroup[T any](primary T, primaryName string, cfg BreakerConfig) *Group[T] {
	g := &Group[T]{cfg: cfg}
	g.Add(primaryName, primary)
	return g
}

// Add registers a further backend, tried after all earlier ones.
func (g *Group[T]) Add(name string, backend T) {
	cfg := g.cfg
	cfg.Name = name
	g.entries = append(g.entries, entry[T]{name: name, value: backend, breaker: NewBreaker(cfg)})
}

// Do is [DoWithResult] for calls without a result value.
func (g *Group[T]) Do(fn func(T) error) error {
	_, err := DoWithResult(g, func(v T) (struct{}, error) {
		return struct{}{}, fn(v)
	})
	return err
}

// DoWithResult tries fn against each backend in order until one succeeds.
// Open-breaker backends are skipped. A package-level function because Go has
// no method-level type parameters.
func DoWithResult[T, R any](g *Group[T], fn func(T) (R, error)) (R, error) {
	var (
		zero    R
		lastErr error
	)
	for i := range g.entries {
		e := &g.entries[i]
		var result R
		err := e.breaker.Do(func() error {
			var callErr error
			result, callErr = fn(e.value)
			return callErr
		})
		if err == nil {
			return result, nil
		}
		lastErr = err
		if errors.Is(err, ErrBreakerOpen) {
			slog.Debug("skipping backend, breaker open", "backend", e.name)
		} else {
			slog.Warn("backend failed, trying next", "backend", e.name, "error", err)
		}
	}
	return zero, fmt.Errorf("%w: %v", ErrAllFailed, lastErr)
}
