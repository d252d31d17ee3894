// Package resilience wraps the external speech and language providers with
// the failure-handling the evaluation pipeline needs: a per-backend circuit
// breaker, ordered failover across equivalent backends, and a bounded
// retry-with-timeout for single calls.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrBreakerOpen is returned by [Breaker.Do] while the breaker is open and
// the cooldown has not yet elapsed.
var ErrBreakerOpen = errors.New("resilience: breaker open")

// BreakerConfig tunes a [Breaker]. Zero fields take defaults.
type BreakerConfig struct {
	// Name labels the breaker in log output.
	Name string

	// MaxFailures is the run of consecutive failures that trips the breaker.
	// Default: 5.
	MaxFailures int

	// Cooldown is how long a tripped breaker rejects calls before letting a
	// single probe through. Default: 30s.
	Cooldown time.Duration
}

// Breaker is a circuit breaker with a single-probe recovery: after the
// cooldown one call is let through, and its outcome either closes the
// breaker or restarts the cooldown.
type Breaker struct {
	name        string
	maxFailures int
	cooldown    time.Duration

	mu       sync.Mutex
	open     bool
	failures int
	openedAt time.Time
	probing  bool
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	return &Breaker{name: cfg.Name, maxFailures: cfg.MaxFailures, cooldown: cfg.Cooldown}
}

// Do runs fn unless the breaker is open. While open and cooling down it
// returns [ErrBreakerOpen] without calling fn; after the cooldown exactly
// one caller is admitted as a probe.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	if b.open {
		if b.probing || time.Since(b.openedAt) < b.cooldown {
			b.mu.Unlock()
			return ErrBreakerOpen
		}
		b.probing = true
		slog.Debug("breaker probing", "name", b.name)
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		if b.open || b.failures >= b.maxFailures {
			if !b.open {
				slog.Warn("breaker opened", "name", b.name, "consecutive_failures", b.failures)
			}
			b.open = true
			b.openedAt = time.Now()
			b.probing = false
		}
		return err
	}
	if b.open {
		slog.Info("breaker closed after successful probe", "name", b.name)
	}
	b.open = false
	b.probing = false
	b.failures = 0
	return nil
}

// Open reports whether the breaker is currently rejecting calls.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open && time.Since(b.openedAt) < b.cooldown
}
