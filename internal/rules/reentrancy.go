package rules

import (
	"regexp"

	"github.com/solsentry/solsentry/models"
)

var (
	reRawCall       = regexp.MustCompile(`\.call\s*\{value\s*:|\.call\.value\s*\(|\.call\s*\(`)
	reValueTransfer = regexp.MustCompile(`\.(transfer|send)\s*\(`)
)

// reentrancyRule applies the checks-effects-interactions heuristic: an
// external call or value transfer followed by a state update in the same
// function can be re-entered before the update lands. Raw calls are rated
// high, plain transfer/send medium (gas-stipend limited).
func reentrancyRule() Rule {
	r := Rule{
		ID:       "SOL-REENTRANCY",
		Category: models.CategoryReentrancy,
		Kind:     models.KindSecurity,
		Severity: models.SeverityHigh,
		Title:    "external call before state update",
	}
	r.Check = func(lc LineContext) (models.Finding, bool) {
		if !lc.StateWriteAfter {
			return models.Finding{}, false
		}
		switch {
		case reRawCall.MatchString(lc.Text):
			return models.Finding{
				Kind:     r.Kind,
				Category: r.Category,
				Severity: models.SeverityHigh,
				Message:  "low-level call precedes a state update; re-entrant callers can observe stale state; update state before the external call or guard with a reentrancy lock",
				Location: models.Location{Line: lc.Number, Function: lc.Function},
				Source:   models.SourceStatic,
			}, true
		case reValueTransfer.MatchString(lc.Text):
			return models.Finding{
				Kind:     r.Kind,
				Category: r.Category,
				Severity: models.SeverityMedium,
				Message:  "value transfer precedes a state update; follow checks-effects-interactions ordering",
				Location: models.Location{Line: lc.Number, Function: lc.Function},
				Source:   models.SourceStatic,
			}, true
		}
		return models.Finding{}, false
	}
	return r
}
