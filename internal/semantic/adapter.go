package semantic

import (
	"context"
	"log/slog"

	"github.com/solsentry/solsentry/models"
)

// Adapter is the engine-facing surface of this package: one bounded call
// per audit, normalised output, no propagated errors.
type Adapter struct {
	provider Provider
}

// NewAdapter wraps a provider for use by the audit pipeline.
func NewAdapter(p Provider) *Adapter {
	return &Adapter{provider: p}
}

// ProviderName reports the underlying provider identifier.
func (a *Adapter) ProviderName() string {
	return a.provider.Name()
}

// Assess runs one semantic analysis for the given source. The caller bounds
// ctx (the engine's semantic timeout); on timeout, cancellation, transport
// error, or an unparseable response the fixed fallback is returned, never
// an error.
func (a *Adapter) Assess(ctx context.Context, source string, unit *models.SourceUnit, opts Options) *Assessment {
	prompt := BuildPrompt(source, unit, opts)

	response, err := a.provider.Analyze(ctx, prompt)
	if err != nil {
		slog.Warn("semantic analysis failed, degrading to fallback",
			"provider", a.provider.Name(), "error", err)
		return Fallback()
	}

	assessment, ok := Normalize(response)
	if !ok {
		slog.Warn("semantic response unparseable, degrading to fallback",
			"provider", a.provider.Name(), "response_bytes", len(response))
		return Fallback()
	}
	return assessment
}
