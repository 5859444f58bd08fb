package rules

import (
	"regexp"

	"github.com/solsentry/solsentry/models"
)

var reSelfdestruct = regexp.MustCompile(`\bselfdestruct\s*\(`)

// selfdestructRule flags selfdestruct invocations. Post-Cancun semantics
// and the risk of an unprotected kill path make any use worth surfacing.
func selfdestructRule() Rule {
	r := Rule{
		ID:       "SOL-SELFDESTRUCT",
		Category: models.CategoryLogic,
		Kind:     models.KindSecurity,
		Severity: models.SeverityMedium,
		Title:    "selfdestruct invocation",
	}
	r.Check = func(lc LineContext) (models.Finding, bool) {
		if !reSelfdestruct.MatchString(lc.Text) {
			return models.Finding{}, false
		}
		return models.Finding{
			Kind:     r.Kind,
			Category: r.Category,
			Severity: r.Severity,
			Message:  "selfdestruct permanently disables the contract and force-sends its balance; ensure the path is strictly access-controlled or remove it",
			Location: models.Location{Line: lc.Number, Function: lc.Function},
			Source:   models.SourceStatic,
		}, true
	}
	return r
}
