// Package semantic adapts the external semantic-analysis collaborator: it
// builds the audit prompt, invokes a provider, and normalises whatever comes
// back into the engine's finding schema. Collaborator failures are absorbed
// here; callers always get a usable Assessment.
package semantic

import (
	"context"
	"fmt"

	"github.com/solsentry/solsentry/internal/config"
)

// Provider abstracts one language-model backend.
// To add a provider: implement this interface and register it in New().
type Provider interface {
	// Name returns the provider identifier (e.g. "openai", "ollama").
	Name() string

	// IsAvailable verifies the provider is reachable and configured.
	IsAvailable(ctx context.Context) bool

	// Analyze sends the audit prompt and returns the raw model output.
	// The caller bounds ctx; no retries happen at this layer.
	Analyze(ctx context.Context, prompt string) (string, error)
}

// New returns the configured Provider. With no provider configured it
// returns a NoopProvider, which the adapter degrades around. With fallback
// providers configured it returns a circuit-breaking ChainProvider.
func New(cfg config.SemanticConfig) (Provider, error) {
	primary, err := newSingle(cfg.Provider, cfg)
	if err != nil {
		return nil, err
	}

	if len(cfg.Fallback) == 0 {
		return primary, nil
	}

	chain := []Provider{primary}
	for _, name := range cfg.Fallback {
		p, err := newSingle(name, cfg)
		if err != nil {
			continue
		}
		chain = append(chain, p)
	}
	if len(chain) == 1 {
		return primary, nil
	}
	return NewChain(chain), nil
}

func newSingle(name string, cfg config.SemanticConfig) (Provider, error) {
	switch name {
	case "openai":
		return NewOpenAI(cfg)
	case "anthropic":
		return NewAnthropic(cfg), nil
	case "ollama":
		return NewOllama(cfg), nil
	case "", "none":
		return &NoopProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown semantic provider %q (supported: openai, anthropic, ollama)", name)
	}
}
