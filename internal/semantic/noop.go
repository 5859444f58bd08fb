package semantic

import (
	"context"
	"errors"
)

// errNoProvider is returned by NoopProvider for every analysis request.
var errNoProvider = errors.New("semantic provider not configured: set semantic.provider in config to enable openai, anthropic, or ollama")

// NoopProvider is used when no semantic provider is configured. IsAvailable
// always returns false, so the adapter degrades to static-only audits
// instead of failing.
type NoopProvider struct{}

func (n *NoopProvider) Name() string                       { return "none" }
func (n *NoopProvider) IsAvailable(_ context.Context) bool { return false }

func (n *NoopProvider) Analyze(_ context.Context, _ string) (string, error) {
	return "", errNoProvider
}
