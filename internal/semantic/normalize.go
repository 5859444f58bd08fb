package semantic

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/solsentry/solsentry/models"
)

// Assessment is the normalised collaborator result. Quality and Gas are nil
// when the collaborator produced nothing usable; the score calculator then
// applies its own neutral default.
type Assessment struct {
	Findings        []models.Finding
	Quality         *int
	Gas             *int
	Summary         string
	Recommendations []string
	// Degraded marks the fixed fallback substituted for a failed or
	// unparseable collaborator response.
	Degraded bool
}

// defaultScore is substituted for an individual score field that is missing
// or out of range in an otherwise parseable response.
const defaultScore = 50

// rawAssessment mirrors the expected response shape with every field
// optional and loosely typed. Nothing in it is trusted.
type rawAssessment struct {
	Vulnerabilities []rawVulnerability `json:"vulnerabilities"`
	QualityScore    any                `json:"quality_score"`
	GasScore        any                `json:"gas_score"`
	Summary         string             `json:"summary"`
	Recommendations []string           `json:"recommendations"`
}

type rawVulnerability struct {
	Category    string `json:"category"`
	Type        string `json:"type"` // some models use "type" instead of "category"
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Message     string `json:"message"`
	Line        any    `json:"line"`
	Function    string `json:"function"`
	Confidence  any    `json:"confidence"`
}

var jsonFence = regexp.MustCompile("```(?:json)?\n?([\\s\\S]*?)\n?```")

// Normalize validates and coerces a raw collaborator response. The second
// return is false when no JSON object could be recovered at all; callers
// substitute Fallback() in that case.
func Normalize(response string) (*Assessment, bool) {
	raw, ok := decodeLoose(response)
	if !ok {
		return nil, false
	}

	a := &Assessment{
		Summary:         strings.TrimSpace(raw.Summary),
		Recommendations: raw.Recommendations,
		Quality:         coerceScore(raw.QualityScore),
		Gas:             coerceScore(raw.GasScore),
	}

	for _, v := range raw.Vulnerabilities {
		category := v.Category
		if category == "" {
			category = v.Type
		}
		message := strings.TrimSpace(v.Description)
		if message == "" {
			message = strings.TrimSpace(v.Message)
		}
		if message == "" && category == "" {
			continue // nothing usable in this entry
		}
		if message == "" {
			message = "issue reported without description"
		}

		normCategory := models.NormalizeCategory(category)
		a.Findings = append(a.Findings, models.Finding{
			Kind:       kindForCategory(normCategory),
			Category:   normCategory,
			Severity:   models.MapSeverity(strings.TrimSpace(v.Severity)),
			Message:    message,
			Location:   models.Location{Line: coerceLine(v.Line), Function: strings.TrimSpace(v.Function)},
			Source:     models.SourceSemantic,
			Confidence: coerceConfidence(v.Confidence),
		})
	}

	return a, true
}

// Fallback is the fixed record substituted when the collaborator fails,
// times out, or returns an unparseable response. Sub-scores stay absent so
// the score calculator falls back to its neutral default.
func Fallback() *Assessment {
	return &Assessment{
		Findings: []models.Finding{{
			Kind:     models.KindQuality,
			Category: models.CategoryOther,
			Severity: models.SeverityMedium,
			Message:  "semantic analysis unavailable",
			Source:   models.SourceSemantic,
		}},
		Degraded: true,
	}
}

// decodeLoose tries the response as-is, then inside markdown fences, then
// sliced from the first '{' to the last '}'.
func decodeLoose(response string) (*rawAssessment, bool) {
	candidates := []string{strings.TrimSpace(response)}
	if m := jsonFence.FindStringSubmatch(response); len(m) > 1 {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if start, end := strings.Index(response, "{"), strings.LastIndex(response, "}"); start >= 0 && end > start {
		candidates = append(candidates, response[start:end+1])
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		var raw rawAssessment
		if err := json.Unmarshal([]byte(c), &raw); err == nil {
			return &raw, true
		}
	}
	return nil, false
}

// coerceScore accepts numbers or numeric strings, clamps to [0,100], and
// substitutes the default for anything else.
func coerceScore(v any) *int {
	score := defaultScore
	switch n := v.(type) {
	case float64:
		score = int(n)
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			score = int(parsed)
		}
	case nil:
		// missing entirely → default
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return &score
}

func coerceLine(v any) int {
	switch n := v.(type) {
	case float64:
		if n > 0 {
			return int(n)
		}
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil && parsed > 0 {
			return parsed
		}
	}
	return 0
}

func coerceConfidence(v any) float64 {
	c := 0.0
	switch n := v.(type) {
	case float64:
		c = n
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			c = parsed
		}
	}
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// kindForCategory maps a category onto the audit dimension it counts against.
func kindForCategory(category string) models.FindingKind {
	switch category {
	case models.CategoryGas:
		return models.KindGas
	case models.CategoryOther:
		return models.KindQuality
	default:
		return models.KindSecurity
	}
}
