package models

import (
	"fmt"
	"strings"
)

// Complexity is the coarse structural classification of a contract.
type Complexity string

const (
	ComplexityLow     Complexity = "low"
	ComplexityMedium  Complexity = "medium"
	ComplexityHigh    Complexity = "high"
	ComplexityUnknown Complexity = "unknown"
)

// FunctionSig is one declared function with its visibility and mutability
// as written in the source (empty when not stated).
type FunctionSig struct {
	Name       string `json:"name"`
	Visibility string `json:"visibility,omitempty"`
	Mutability string `json:"mutability,omitempty"`
}

// SourceUnit is the structural view of one contract source, extracted by the
// parser. It is immutable once built and owned by a single pipeline run.
type SourceUnit struct {
	LineCount  int           `json:"line_count"`
	Contracts  []string      `json:"contracts"`
	Functions  []FunctionSig `json:"functions"`
	Modifiers  []string      `json:"modifiers"`
	Events     []string      `json:"events"`
	Pragmas    []string      `json:"pragmas"`
	Complexity Complexity    `json:"complexity"`
	// ParseError is set when the source contained no recognisable
	// declaration. The audit still proceeds; this is a degradation marker,
	// not a failure.
	ParseError bool `json:"parse_error,omitempty"`
}

// Summary renders a compact one-paragraph description of the unit, used in
// semantic prompts and report metadata.
func (u *SourceUnit) Summary() string {
	if u.ParseError {
		return fmt.Sprintf("%d lines, no recognisable Solidity declarations", u.LineCount)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d lines, %d contract(s), %d function(s), complexity %s",
		u.LineCount, len(u.Contracts), len(u.Functions), u.Complexity)
	if len(u.Contracts) > 0 {
		fmt.Fprintf(&b, "; contracts: %s", strings.Join(u.Contracts, ", "))
	}
	if len(u.Pragmas) > 0 {
		fmt.Fprintf(&b, "; %s", strings.Join(u.Pragmas, "; "))
	}
	return b.String()
}
