// Package engine runs the audit pipeline: parse, check (static + semantic
// in parallel), aggregate, score, and build the report. The engine is
// stateless; concurrent audits share nothing.
package engine

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/solsentry/solsentry/internal/config"
	"github.com/solsentry/solsentry/internal/parser"
	"github.com/solsentry/solsentry/internal/rules"
	"github.com/solsentry/solsentry/internal/semantic"
	"github.com/solsentry/solsentry/models"
)

// Input precondition failures: the only errors Audit returns. Everything
// else degrades into the report itself.
var (
	ErrInputEmpty    = errors.New("contract source is empty")
	ErrInputTooLarge = errors.New("contract source exceeds the configured size limit")
)

// Engine wires the pipeline stages. Build one and reuse it across audits.
type Engine struct {
	checker         *rules.Checker
	adapter         *semantic.Adapter
	maxSourceBytes  int
	semanticTimeout time.Duration
	dedupeWindow    int
}

// New creates an Engine. Zero values in cfg fall back to the package
// defaults from config.
func New(cfg config.EngineConfig, checker *rules.Checker, adapter *semantic.Adapter) *Engine {
	e := &Engine{
		checker:         checker,
		adapter:         adapter,
		maxSourceBytes:  cfg.MaxSourceBytes,
		semanticTimeout: cfg.SemanticTimeout,
		dedupeWindow:    cfg.DedupeLineWindow,
	}
	if e.maxSourceBytes <= 0 {
		e.maxSourceBytes = config.DefaultMaxSourceBytes
	}
	if e.semanticTimeout <= 0 {
		e.semanticTimeout = config.DefaultSemanticTimeout
	}
	if e.dedupeWindow <= 0 {
		e.dedupeWindow = config.DefaultDedupeLineWindow
	}
	return e
}

// AuditOptions parameterise one audit invocation.
type AuditOptions struct {
	// AuditID overrides the generated identifier (e.g. for idempotent
	// retries). Empty means generate.
	AuditID      string
	Chain        string
	AnalysisMode string
}

// Audit runs the full pipeline for one source. It fails only on input
// precondition violations (empty/oversized); parse degradation and
// collaborator failures are recorded in the returned report instead.
func (e *Engine) Audit(ctx context.Context, source string, opts AuditOptions) (*models.AuditReport, error) {
	start := time.Now()

	if strings.TrimSpace(source) == "" {
		return nil, ErrInputEmpty
	}
	if len(source) > e.maxSourceBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrInputTooLarge, len(source), e.maxSourceBytes)
	}

	unit := parser.Parse(source)
	if unit.ParseError {
		slog.Warn("no declarations found, auditing degraded source", "lines", unit.LineCount)
	}

	// The static checker and the semantic adapter are independent; run
	// them concurrently. The semantic call is bounded by the engine's
	// timeout and by caller cancellation; past that bound the adapter
	// degrades to its fallback instead of blocking the static result.
	staticCh := make(chan []models.Finding, 1)
	go func() {
		staticCh <- e.checker.Check(source)
	}()

	assessCh := make(chan *semantic.Assessment, 1)
	go func() {
		sctx, cancel := context.WithTimeout(ctx, e.semanticTimeout)
		defer cancel()
		assessCh <- e.adapter.Assess(sctx, source, unit, semantic.Options{
			Chain:        opts.Chain,
			AnalysisMode: opts.AnalysisMode,
		})
	}()

	staticFindings := <-staticCh
	assessment := <-assessCh

	findings := aggregate(staticFindings, assessment.Findings, e.dedupeWindow)
	scores := calculateScores(findings, assessment.Quality, assessment.Gas)

	report := &models.AuditReport{
		AuditID:          opts.AuditID,
		CreatedAt:        time.Now().UTC(),
		Chain:            opts.Chain,
		AnalysisMode:     opts.AnalysisMode,
		Source:           unit,
		Findings:         findings,
		Scores:           scores,
		Summary:          buildSummary(unit, findings, scores, assessment),
		Recommendations:  buildRecommendations(findings, assessment),
		SemanticDegraded: assessment.Degraded,
		ExecutionTimeMs:  time.Since(start).Milliseconds(),
	}
	if report.AuditID == "" {
		report.AuditID = newAuditID()
	}
	return report, nil
}

// newAuditID returns a 32-char random hex identifier.
func newAuditID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing means the process is in serious trouble;
		// fall back to a timestamp so the report still has an identity.
		return fmt.Sprintf("audit-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

// buildSummary renders the free-text report summary, preferring the
// collaborator's own wording when available.
func buildSummary(unit *models.SourceUnit, findings []models.Finding, scores models.ScoreSet, assessment *semantic.Assessment) string {
	var b strings.Builder

	if unit.ParseError {
		b.WriteString("No Solidity declarations were recognised; structural analysis is degraded. ")
	}

	counts := map[models.Severity]int{}
	for _, f := range findings {
		counts[f.Severity]++
	}
	fmt.Fprintf(&b, "Audited %s: %d finding(s)", unit.Summary(), len(findings))
	if len(findings) > 0 {
		fmt.Fprintf(&b, " (%d critical, %d high, %d medium, %d low)",
			counts[models.SeverityCritical], counts[models.SeverityHigh],
			counts[models.SeverityMedium], counts[models.SeverityLow])
	}
	fmt.Fprintf(&b, ". Security score %d, risk level %s.", scores.Security, scores.RiskLevel)

	if assessment.Degraded {
		b.WriteString(" Semantic analysis was unavailable; results are static-only.")
	} else if assessment.Summary != "" {
		b.WriteString(" " + assessment.Summary)
	}
	return b.String()
}

// categoryAdvice maps static finding categories to fixed remediation advice.
var categoryAdvice = map[string]string{
	models.CategoryReentrancy:    "Apply checks-effects-interactions ordering and consider a reentrancy guard.",
	models.CategoryAccessControl: "Restrict privileged paths with msg.sender-based access control.",
	models.CategoryArithmetic:    "Use checked arithmetic or explicit bounds validation.",
	models.CategoryLogic:         "Review contract lifecycle paths (selfdestruct, upgrade hooks) for unintended reachability.",
	models.CategoryGas:           "Move storage writes out of loops and cache storage reads in memory.",
}

// buildRecommendations merges collaborator recommendations with fixed
// per-category advice for the static findings, deduplicated, in stable order.
func buildRecommendations(findings []models.Finding, assessment *semantic.Assessment) []string {
	var out []string
	seen := map[string]bool{}

	for _, r := range assessment.Recommendations {
		r = strings.TrimSpace(r)
		if r != "" && !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}

	seenCategory := map[string]bool{}
	for _, f := range findings {
		if f.Source != models.SourceStatic || seenCategory[f.Category] {
			continue
		}
		seenCategory[f.Category] = true
		if advice, ok := categoryAdvice[f.Category]; ok && !seen[advice] {
			seen[advice] = true
			out = append(out, advice)
		}
	}
	return out
}
