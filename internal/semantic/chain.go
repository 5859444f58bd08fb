package semantic

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	failureThreshold = 3
	resetTimeout     = 2 * time.Minute
)

// circuitBreaker tracks consecutive failures per provider so a dead backend
// is skipped instead of eating the audit's semantic timeout every call.
type circuitBreaker struct {
	mu           sync.Mutex
	failures     int
	lastFailedAt time.Time
	state        string
}

func newCircuitBreaker() *circuitBreaker {
	return &circuitBreaker{state: "closed"}
}

func (cb *circuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == "closed" {
		return true
	}
	if cb.state == "open" {
		if time.Since(cb.lastFailedAt) >= resetTimeout {
			cb.state = "half-open"
			return true
		}
		return false
	}
	return true
}

func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.state = "closed"
}

func (cb *circuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures++
	cb.lastFailedAt = time.Now()
	if cb.failures >= failureThreshold {
		cb.state = "open"
		slog.Debug("semantic: circuit breaker opened", "failures", cb.failures)
	}
}

// ChainProvider tries each provider in order, skipping those with an open
// circuit, and remembers which one served the last request.
type ChainProvider struct {
	providers []Provider
	breakers  map[string]*circuitBreaker

	mu      sync.RWMutex
	current string
}

// NewChain builds a ChainProvider over providers in priority order.
func NewChain(providers []Provider) *ChainProvider {
	breakers := make(map[string]*circuitBreaker, len(providers))
	for _, p := range providers {
		breakers[p.Name()] = newCircuitBreaker()
	}
	current := ""
	if len(providers) > 0 {
		current = providers[0].Name()
	}
	return &ChainProvider{providers: providers, breakers: breakers, current: current}
}

func (c *ChainProvider) Name() string { return "chain" }

// Current reports which provider served the last successful request.
func (c *ChainProvider) Current() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *ChainProvider) IsAvailable(ctx context.Context) bool {
	for _, p := range c.providers {
		if p.IsAvailable(ctx) {
			return true
		}
	}
	return false
}

func (c *ChainProvider) Analyze(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for _, p := range c.providers {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !c.breakers[p.Name()].allow() {
			slog.Debug("semantic: circuit open, skipping provider", "provider", p.Name())
			continue
		}

		result, err := p.Analyze(ctx, prompt)
		if err == nil {
			c.breakers[p.Name()].recordSuccess()
			c.mu.Lock()
			c.current = p.Name()
			c.mu.Unlock()
			return result, nil
		}

		c.breakers[p.Name()].recordFailure()
		slog.Warn("semantic: provider failed, trying next",
			"provider", p.Name(), "error", err)
		lastErr = err
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("all semantic providers skipped by open circuits")
	}
	return "", lastErr
}
