package rules

import (
	"strings"

	"github.com/solsentry/solsentry/models"
)

// txOriginRule flags authorization tied to the transaction origin.
// tx.origin passes through intermediate contracts, so any caller of a
// trusted contract can impersonate its user.
func txOriginRule() Rule {
	r := Rule{
		ID:       "SOL-TX-ORIGIN",
		Category: models.CategoryAccessControl,
		Kind:     models.KindSecurity,
		Severity: models.SeverityHigh,
		Title:    "authorization via tx.origin",
	}
	r.Check = func(lc LineContext) (models.Finding, bool) {
		if !strings.Contains(lc.Text, "tx.origin") {
			return models.Finding{}, false
		}
		return models.Finding{
			Kind:     r.Kind,
			Category: r.Category,
			Severity: r.Severity,
			Message:  "tx.origin used for authorization; use msg.sender, since tx.origin is forwardable through intermediate contracts",
			Location: models.Location{Line: lc.Number, Function: lc.Function},
			Source:   models.SourceStatic,
		}, true
	}
	return r
}
