package rules

import (
	"regexp"

	"github.com/solsentry/solsentry/models"
)

var reDelegatecall = regexp.MustCompile(`\.delegatecall\s*\(`)

// delegatecallRule flags low-level delegatecall: the callee executes with
// the caller's storage and balance, so an attacker-influenced target owns
// the contract.
func delegatecallRule() Rule {
	r := Rule{
		ID:       "SOL-DELEGATECALL",
		Category: models.CategoryAccessControl,
		Kind:     models.KindSecurity,
		Severity: models.SeverityHigh,
		Title:    "low-level delegatecall",
	}
	r.Check = func(lc LineContext) (models.Finding, bool) {
		if !reDelegatecall.MatchString(lc.Text) {
			return models.Finding{}, false
		}
		return models.Finding{
			Kind:     r.Kind,
			Category: r.Category,
			Severity: r.Severity,
			Message:  "delegatecall executes foreign code against this contract's storage; the target must be immutable and trusted",
			Location: models.Location{Line: lc.Number, Function: lc.Function},
			Source:   models.SourceStatic,
		}, true
	}
	return r
}
