package rules

import "github.com/solsentry/solsentry/models"

// storageLoopRule flags storage writes inside loop bodies: each iteration
// pays an SSTORE, so accumulating in a local and writing once is much
// cheaper.
func storageLoopRule() Rule {
	r := Rule{
		ID:       "SOL-STORAGE-LOOP",
		Category: models.CategoryGas,
		Kind:     models.KindGas,
		Severity: models.SeverityLow,
		Title:    "storage write inside loop",
	}
	r.Check = func(lc LineContext) (models.Finding, bool) {
		if !lc.InLoop || !isStateWrite(lc.Text) {
			return models.Finding{}, false
		}
		return models.Finding{
			Kind:     r.Kind,
			Category: r.Category,
			Severity: r.Severity,
			Message:  "storage variable written inside a loop; accumulate in memory and write once after the loop",
			Location: models.Location{Line: lc.Number, Function: lc.Function},
			Source:   models.SourceStatic,
		}, true
	}
	return r
}
