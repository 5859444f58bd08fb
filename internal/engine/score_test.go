package engine

import (
	"testing"

	"github.com/solsentry/solsentry/models"
)

func secFinding(sev models.Severity) models.Finding {
	return models.Finding{
		Kind:     models.KindSecurity,
		Category: models.CategoryLogic,
		Severity: sev,
		Source:   models.SourceStatic,
	}
}

func TestRiskLevelBoundaries(t *testing.T) {
	tests := []struct {
		security int
		want     models.RiskLevel
	}{
		{0, models.RiskCritical},
		{30, models.RiskCritical},
		{31, models.RiskHigh},
		{49, models.RiskHigh},
		{50, models.RiskHigh},
		{51, models.RiskMedium},
		{69, models.RiskMedium},
		{70, models.RiskMedium},
		{71, models.RiskLow},
		{77, models.RiskLow},
		{100, models.RiskLow},
	}
	for _, tt := range tests {
		if got := riskLevelFor(tt.security); got != tt.want {
			t.Errorf("riskLevelFor(%d) = %s, want %s", tt.security, got, tt.want)
		}
	}
}

func TestSeverityDeductions(t *testing.T) {
	tests := []struct {
		sev  models.Severity
		want int
	}{
		{models.SeverityCritical, 25},
		{models.SeverityHigh, 15},
		{models.SeverityMedium, 8},
		{models.SeverityLow, 3},
	}
	for _, tt := range tests {
		scores := calculateScores([]models.Finding{secFinding(tt.sev)}, nil, nil)
		if scores.Security != 100-tt.want {
			t.Errorf("%s: security = %d, want %d", tt.sev, scores.Security, 100-tt.want)
		}
	}
}

func TestCriticalFindingMonotonicity(t *testing.T) {
	// Each additional critical finding costs exactly 25, clamped at 0.
	var findings []models.Finding
	prev := 100
	for i := 0; i < 6; i++ {
		findings = append(findings, secFinding(models.SeverityCritical))
		got := calculateScores(findings, nil, nil).Security

		want := prev - 25
		if want < 0 {
			want = 0
		}
		if got != want {
			t.Fatalf("after %d criticals: security = %d, want %d", i+1, got, want)
		}
		prev = got
	}
	if prev != 0 {
		t.Errorf("six criticals must clamp to 0, got %d", prev)
	}
}

func TestNonSecurityKindsDoNotReduceSecurity(t *testing.T) {
	findings := []models.Finding{
		{Kind: models.KindGas, Category: models.CategoryGas, Severity: models.SeverityLow, Source: models.SourceStatic},
		{Kind: models.KindQuality, Category: models.CategoryOther, Severity: models.SeverityMedium, Source: models.SourceSemantic},
	}
	scores := calculateScores(findings, nil, nil)
	if scores.Security != 100 {
		t.Errorf("security = %d, want 100 (gas/quality findings must not deduct)", scores.Security)
	}
	if scores.RiskLevel != models.RiskLow {
		t.Errorf("risk = %s, want Low", scores.RiskLevel)
	}
}

func TestQualityAndGasDefaults(t *testing.T) {
	scores := calculateScores(nil, nil, nil)
	if scores.Quality != neutralScore || scores.Gas != neutralScore {
		t.Errorf("absent sub-scores must default to %d, got %d/%d",
			neutralScore, scores.Quality, scores.Gas)
	}

	q, g := 42, 130
	scores = calculateScores(nil, &q, &g)
	if scores.Quality != 42 {
		t.Errorf("quality = %d, want 42", scores.Quality)
	}
	if scores.Gas != 100 {
		t.Errorf("gas = %d, want clamp to 100", scores.Gas)
	}
}
