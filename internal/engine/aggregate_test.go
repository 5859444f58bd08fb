package engine

import (
	"testing"

	"github.com/solsentry/solsentry/models"
)

func staticAt(category string, line int) models.Finding {
	return models.Finding{
		Kind:     models.KindSecurity,
		Category: category,
		Severity: models.SeverityHigh,
		Message:  "static detection",
		Location: models.Location{Line: line},
		Source:   models.SourceStatic,
	}
}

func semanticAt(category string, line int) models.Finding {
	return models.Finding{
		Kind:       models.KindSecurity,
		Category:   category,
		Severity:   models.SeverityHigh,
		Message:    "semantic detection with richer context",
		Location:   models.Location{Line: line},
		Source:     models.SourceSemantic,
		Confidence: 0.8,
	}
}

func TestAggregatePrefersSemanticWithinWindow(t *testing.T) {
	static := []models.Finding{staticAt(models.CategoryReentrancy, 10)}
	sem := []models.Finding{semanticAt(models.CategoryReentrancy, 12)}

	out := aggregate(static, sem, 3)
	if len(out) != 1 {
		t.Fatalf("expected 1 merged finding, got %d: %+v", len(out), out)
	}
	if out[0].Source != models.SourceSemantic {
		t.Error("semantic record must win a duplicate")
	}
	if out[0].Message != "semantic detection with richer context" {
		t.Errorf("message = %q", out[0].Message)
	}
}

func TestAggregateKeepsDistinctIssues(t *testing.T) {
	static := []models.Finding{
		staticAt(models.CategoryReentrancy, 10),
		staticAt(models.CategoryAccessControl, 10), // same line, different category
	}
	sem := []models.Finding{
		semanticAt(models.CategoryReentrancy, 20), // same category, far away
	}

	out := aggregate(static, sem, 3)
	if len(out) != 3 {
		t.Fatalf("expected 3 findings, got %d: %+v", len(out), out)
	}
	// Static first, semantic second.
	if out[0].Source != models.SourceStatic || out[2].Source != models.SourceSemantic {
		t.Errorf("insertion order broken: %+v", out)
	}
}

func TestAggregateWindowEdge(t *testing.T) {
	static := []models.Finding{staticAt(models.CategoryLogic, 10)}

	// Distance 3 is a duplicate, distance 4 is not.
	out := aggregate(static, []models.Finding{semanticAt(models.CategoryLogic, 13)}, 3)
	if len(out) != 1 {
		t.Errorf("distance 3 must dedupe, got %d findings", len(out))
	}
	out = aggregate(static, []models.Finding{semanticAt(models.CategoryLogic, 14)}, 3)
	if len(out) != 2 {
		t.Errorf("distance 4 must not dedupe, got %d findings", len(out))
	}
}

func TestAggregateKindMismatchNeverDedupes(t *testing.T) {
	static := []models.Finding{{
		Kind: models.KindGas, Category: models.CategoryGas,
		Severity: models.SeverityLow, Location: models.Location{Line: 5},
		Source: models.SourceStatic,
	}}
	sem := []models.Finding{{
		Kind: models.KindSecurity, Category: models.CategoryGas,
		Severity: models.SeverityMedium, Location: models.Location{Line: 5},
		Source: models.SourceSemantic,
	}}
	if out := aggregate(static, sem, 3); len(out) != 2 {
		t.Errorf("kind mismatch must not dedupe, got %d findings", len(out))
	}
}

func TestAggregateLinelessFindings(t *testing.T) {
	a := models.Finding{Kind: models.KindQuality, Category: models.CategoryOther,
		Severity: models.SeverityMedium, Source: models.SourceSemantic}
	b := a
	b.Message = "second lineless"

	out := aggregate(nil, []models.Finding{a, b}, 3)
	if len(out) != 1 {
		t.Errorf("lineless findings of the same kind+category collapse, got %d", len(out))
	}

	withLine := a
	withLine.Location.Line = 9
	out = aggregate(nil, []models.Finding{a, withLine}, 3)
	if len(out) != 2 {
		t.Errorf("lineless vs line-bearing must not collapse, got %d", len(out))
	}
}
