package semantic

import (
	"testing"

	"github.com/solsentry/solsentry/models"
)

func TestNormalizeWellFormedResponse(t *testing.T) {
	response := `{
		"vulnerabilities": [
			{"category": "reentrancy", "severity": "high", "description": "withdraw is re-entrant", "line": 12, "function": "withdraw", "confidence": 0.9},
			{"category": "gas", "severity": "low", "description": "loop writes storage", "line": 30}
		],
		"quality_score": 64,
		"gas_score": 58,
		"summary": "Moderate risk.",
		"recommendations": ["add a reentrancy guard"]
	}`

	a, ok := Normalize(response)
	if !ok {
		t.Fatal("expected parseable response")
	}
	if len(a.Findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(a.Findings))
	}

	f := a.Findings[0]
	if f.Category != models.CategoryReentrancy || f.Severity != models.SeverityHigh {
		t.Errorf("finding 0 = %s/%s", f.Category, f.Severity)
	}
	if f.Location.Line != 12 || f.Location.Function != "withdraw" {
		t.Errorf("finding 0 location = %+v", f.Location)
	}
	if f.Source != models.SourceSemantic || f.Confidence != 0.9 {
		t.Errorf("finding 0 source/confidence = %s/%v", f.Source, f.Confidence)
	}
	if a.Findings[1].Kind != models.KindGas {
		t.Errorf("gas category must map to gas kind, got %s", a.Findings[1].Kind)
	}

	if a.Quality == nil || *a.Quality != 64 || a.Gas == nil || *a.Gas != 58 {
		t.Errorf("scores = %v/%v, want 64/58", a.Quality, a.Gas)
	}
	if a.Summary != "Moderate risk." || len(a.Recommendations) != 1 {
		t.Errorf("summary/recommendations = %q/%v", a.Summary, a.Recommendations)
	}
}

func TestNormalizeCoercesSlop(t *testing.T) {
	// Models routinely wrap JSON in fences, use "type" instead of
	// "category", return lines as strings and omit severities.
	response := "Here is my analysis:\n```json\n" + `{
		"vulnerabilities": [
			{"type": "Authorization through tx.origin", "description": "uses tx.origin", "line": "7"},
			{"category": "arithmetic", "severity": "CATASTROPHIC", "description": "overflow", "confidence": 7}
		],
		"quality_score": "88",
		"gas_score": 180
	}` + "\n```\nLet me know if you need more detail."

	a, ok := Normalize(response)
	if !ok {
		t.Fatal("expected fenced response to parse")
	}
	if len(a.Findings) != 2 {
		t.Fatalf("expected 2 findings, got %d: %+v", len(a.Findings), a.Findings)
	}

	f := a.Findings[0]
	if f.Category != models.CategoryAccessControl {
		t.Errorf("category = %s, want access-control from free-form type", f.Category)
	}
	if f.Severity != models.SeverityMedium {
		t.Errorf("missing severity must coerce to medium, got %s", f.Severity)
	}
	if f.Location.Line != 7 {
		t.Errorf("string line must coerce, got %d", f.Location.Line)
	}

	if got := a.Findings[1].Severity; got != models.SeverityMedium {
		t.Errorf("unknown severity must coerce to medium, got %s", got)
	}
	if got := a.Findings[1].Confidence; got != 1 {
		t.Errorf("confidence must clamp to 1, got %v", got)
	}

	if a.Quality == nil || *a.Quality != 88 {
		t.Errorf("quality = %v, want 88 from numeric string", a.Quality)
	}
	if a.Gas == nil || *a.Gas != 100 {
		t.Errorf("gas = %v, want clamp to 100", a.Gas)
	}
}

func TestNormalizeMissingScoresDefaultTo50(t *testing.T) {
	a, ok := Normalize(`{"vulnerabilities": [], "summary": "fine"}`)
	if !ok {
		t.Fatal("expected parseable response")
	}
	if a.Quality == nil || *a.Quality != defaultScore {
		t.Errorf("quality = %v, want %d", a.Quality, defaultScore)
	}
	if a.Gas == nil || *a.Gas != defaultScore {
		t.Errorf("gas = %v, want %d", a.Gas, defaultScore)
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	for _, response := range []string{
		"",
		"I could not analyse this contract.",
		"]] not json [[",
	} {
		if a, ok := Normalize(response); ok {
			t.Errorf("Normalize(%q) = %+v, want unparseable", response, a)
		}
	}
}

func TestNormalizeSkipsEmptyEntries(t *testing.T) {
	a, ok := Normalize(`{"vulnerabilities": [{}, {"severity": "high"}]}`)
	if !ok {
		t.Fatal("expected parseable response")
	}
	if len(a.Findings) != 0 {
		t.Errorf("entries with no category and no description must be dropped: %+v", a.Findings)
	}
}

func TestFallbackShape(t *testing.T) {
	a := Fallback()
	if !a.Degraded {
		t.Error("fallback must be marked degraded")
	}
	if len(a.Findings) != 1 {
		t.Fatalf("fallback must carry exactly one finding, got %d", len(a.Findings))
	}
	f := a.Findings[0]
	if f.Category != models.CategoryOther || f.Severity != models.SeverityMedium {
		t.Errorf("fallback finding = %s/%s, want other/medium", f.Category, f.Severity)
	}
	if f.Message != "semantic analysis unavailable" {
		t.Errorf("fallback message = %q", f.Message)
	}
	if a.Quality != nil || a.Gas != nil {
		t.Error("fallback sub-scores must be absent so the neutral default applies")
	}
}
