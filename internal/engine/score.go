package engine

import "github.com/solsentry/solsentry/models"

// neutralScore is used for quality and gas when the semantic collaborator
// reported nothing at all.
const neutralScore = 75

// riskBuckets is the exact security-score → risk-level table. Bounds are
// inclusive: 70 is still Medium, 50 is still High.
var riskBuckets = []struct {
	max   int
	level models.RiskLevel
}{
	{30, models.RiskCritical},
	{50, models.RiskHigh},
	{70, models.RiskMedium},
	{100, models.RiskLow},
}

// riskLevelFor buckets a security score.
func riskLevelFor(security int) models.RiskLevel {
	for _, b := range riskBuckets {
		if security <= b.max {
			return b.level
		}
	}
	return models.RiskLow
}

// calculateScores derives the ScoreSet from aggregated findings plus the
// collaborator's sub-scores. Security starts at 100 and loses each
// security-kind finding's severity deduction; gas and quality findings
// never reduce it (the degraded-semantic fallback in particular must not).
func calculateScores(findings []models.Finding, quality, gas *int) models.ScoreSet {
	security := 100
	for _, f := range findings {
		if f.Kind != models.KindSecurity {
			continue
		}
		security -= f.Severity.Deduction()
	}
	security = clampScore(security)

	q, g := neutralScore, neutralScore
	if quality != nil {
		q = clampScore(*quality)
	}
	if gas != nil {
		g = clampScore(*gas)
	}

	return models.ScoreSet{
		Security:  security,
		Quality:   q,
		Gas:       g,
		RiskLevel: riskLevelFor(security),
	}
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
