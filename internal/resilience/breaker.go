// Package resilience guards outbound webhook deliveries. A notification
// channel whose endpoint keeps failing is cut off for a cool-down period
// instead of being retried on every scheduler tick.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while a channel is in its cool-down period.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Breaker cuts off a failing delivery target. After threshold consecutive
// failures every call is rejected until the cool-down elapses; the next
// call after that runs as a probe, and its outcome decides whether the
// breaker closes again or the cool-down restarts.
type Breaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	streak    int // consecutive failures
	open      bool
	probing   bool
	openedAt  time.Time
	clock     func() time.Time // for testing
}

// NewBreaker creates a breaker that opens after threshold consecutive
// failures and stays open for the given cool-down.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	return &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		clock:     time.Now,
	}
}

// Execute runs fn unless the breaker is open, in which case it returns
// ErrCircuitOpen without calling fn.
func (b *Breaker) Execute(fn func() error) error {
	b.mu.Lock()
	if b.open {
		if b.clock().Sub(b.openedAt) < b.cooldown {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		b.probing = true
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.streak++
		if b.probing || b.streak >= b.threshold {
			b.open = true
			b.probing = false
			b.openedAt = b.clock()
		}
		return err
	}

	b.streak = 0
	b.open = false
	b.probing = false
	return nil
}

// State reports "closed", "open" or "half-open".
func (b *Breaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case b.open && b.clock().Sub(b.openedAt) >= b.cooldown:
		return "half-open"
	case b.open:
		return "open"
	default:
		return "closed"
	}
}
