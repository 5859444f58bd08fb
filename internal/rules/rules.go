// Package rules implements the static vulnerability checker: a fixed table
// of independent, line-scoped lexical rules. The checker is a pure function
// of the source text: same input, same findings, always.
package rules

import "github.com/solsentry/solsentry/models"

// LineContext is what a rule sees for one source line: the comment-stripped
// text plus the structural context the checker tracked while scanning.
type LineContext struct {
	Number   int
	Text     string
	Function string // enclosing function name, best-effort
	InLoop   bool   // inside a for/while body
	// StateWriteAfter reports whether a storage-looking assignment occurs
	// later in the same function, used by the reentrancy heuristic.
	StateWriteAfter bool
}

// Rule is one lexical vulnerability pattern. Check returns the finding for
// a matching line; rules are independent and order-insensitive.
type Rule struct {
	ID       string
	Category string
	Kind     models.FindingKind
	Severity models.Severity // listed severity; Check may refine it
	Title    string
	Check    func(lc LineContext) (models.Finding, bool)
}

// DefaultRules returns the builtin rule table in its fixed scan order.
func DefaultRules() []Rule {
	return []Rule{
		txOriginRule(),
		reentrancyRule(),
		selfdestructRule(),
		delegatecallRule(),
		storageLoopRule(),
	}
}
