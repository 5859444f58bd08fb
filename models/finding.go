package models

import "strings"

// FindingKind separates the three audit dimensions a finding counts against.
type FindingKind string

const (
	KindSecurity FindingKind = "security"
	KindGas      FindingKind = "gas"
	KindQuality  FindingKind = "quality"
)

// FindingSource records which half of the pipeline produced a finding.
type FindingSource string

const (
	SourceStatic   FindingSource = "static"
	SourceSemantic FindingSource = "semantic"
)

// Vulnerability categories. Semantic findings may carry categories outside
// this list; they normalise to CategoryOther.
const (
	CategoryReentrancy    = "reentrancy"
	CategoryAccessControl = "access-control"
	CategoryArithmetic    = "arithmetic"
	CategoryLogic         = "logic"
	CategoryGas           = "gas"
	CategoryOther         = "other"
)

// Location pins a finding to a place in the source, best-effort.
// Line 0 means "no line information".
type Location struct {
	Line     int    `json:"line,omitempty"`
	Function string `json:"function,omitempty"`
}

// HasLine reports whether the location carries usable line information.
func (l Location) HasLine() bool {
	return l.Line > 0
}

// Finding is one detected issue. Findings are value objects: once emitted
// by a checker they are never mutated, only merged or dropped.
type Finding struct {
	Kind     FindingKind   `json:"kind"`
	Category string        `json:"category"`
	Severity Severity      `json:"severity"`
	Message  string        `json:"message"`
	Location Location      `json:"location"`
	Source   FindingSource `json:"source"`
	// Confidence is reported by the semantic collaborator only (0.0–1.0).
	Confidence float64 `json:"confidence,omitempty"`
}

// NormalizeCategory maps a free-form collaborator category onto the fixed
// category set used for deduplication and reporting.
func NormalizeCategory(raw string) string {
	switch raw {
	case CategoryReentrancy, CategoryAccessControl, CategoryArithmetic, CategoryLogic, CategoryGas, CategoryOther:
		return raw
	}
	switch {
	case containsFold(raw, "reentran"):
		return CategoryReentrancy
	case containsFold(raw, "access"), containsFold(raw, "auth"), containsFold(raw, "tx.origin"), containsFold(raw, "delegatecall"):
		return CategoryAccessControl
	case containsFold(raw, "overflow"), containsFold(raw, "underflow"), containsFold(raw, "arithmetic"), containsFold(raw, "integer"):
		return CategoryArithmetic
	case containsFold(raw, "gas"):
		return CategoryGas
	case containsFold(raw, "logic"), containsFold(raw, "selfdestruct"):
		return CategoryLogic
	default:
		return CategoryOther
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}
