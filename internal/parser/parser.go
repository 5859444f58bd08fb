// Package parser extracts the structural view of a Solidity source without
// a full grammar: declaration headers are matched line by line with token
// patterns, which is robust against malformed bodies.
package parser

import (
	"regexp"
	"strings"

	"github.com/solsentry/solsentry/models"
)

var (
	reContract   = regexp.MustCompile(`^\s*(?:abstract\s+)?(contract|library|interface)\s+([A-Za-z_$][\w$]*)`)
	reFunction   = regexp.MustCompile(`^\s*function\s+([A-Za-z_$][\w$]*)\s*\(`)
	reModifier   = regexp.MustCompile(`^\s*modifier\s+([A-Za-z_$][\w$]*)`)
	reEvent      = regexp.MustCompile(`^\s*event\s+([A-Za-z_$][\w$]*)`)
	rePragma     = regexp.MustCompile(`^\s*pragma\s+solidity\s+([^;]+);`)
	reVisibility = regexp.MustCompile(`\b(public|external|internal|private)\b`)
	reMutability = regexp.MustCompile(`\b(view|pure|payable)\b`)
)

// Parse builds a SourceUnit from raw source text. It never fails: unmatched
// sections yield empty lists, and a source with no declarations at all is
// marked degraded (ParseError, complexity unknown) rather than rejected.
func Parse(source string) *models.SourceUnit {
	lines := strings.Split(source, "\n")
	unit := &models.SourceUnit{LineCount: len(lines)}

	inBlockComment := false
	for _, raw := range lines {
		line, next := stripComments(raw, inBlockComment)
		inBlockComment = next
		if strings.TrimSpace(line) == "" {
			continue
		}

		if m := reContract.FindStringSubmatch(line); m != nil {
			unit.Contracts = append(unit.Contracts, m[2])
			continue
		}
		if m := reFunction.FindStringSubmatch(line); m != nil {
			unit.Functions = append(unit.Functions, functionSig(m[1], line))
			continue
		}
		if m := reModifier.FindStringSubmatch(line); m != nil {
			unit.Modifiers = append(unit.Modifiers, m[1])
			continue
		}
		if m := reEvent.FindStringSubmatch(line); m != nil {
			unit.Events = append(unit.Events, m[1])
			continue
		}
		if m := rePragma.FindStringSubmatch(line); m != nil {
			unit.Pragmas = append(unit.Pragmas, "pragma solidity "+strings.TrimSpace(m[1]))
		}
	}

	if len(unit.Contracts) == 0 && len(unit.Functions) == 0 &&
		len(unit.Modifiers) == 0 && len(unit.Events) == 0 {
		unit.ParseError = true
		unit.Complexity = models.ComplexityUnknown
		return unit
	}

	unit.Complexity = classify(len(unit.Functions), len(unit.Contracts), unit.LineCount)
	return unit
}

// functionSig picks visibility and mutability keywords off the declaration
// line. Multi-line headers lose the modifiers, which is acceptable for a
// structural summary.
func functionSig(name, line string) models.FunctionSig {
	sig := models.FunctionSig{Name: name}
	rest := line
	if i := strings.Index(line, ")"); i >= 0 {
		// Keywords live after the parameter list; searching there avoids
		// matching parameter data locations or names.
		rest = line[i:]
	}
	if m := reVisibility.FindStringSubmatch(rest); m != nil {
		sig.Visibility = m[1]
	}
	if m := reMutability.FindStringSubmatch(rest); m != nil {
		sig.Mutability = m[1]
	}
	return sig
}

// classify buckets the weighted structural score:
// functions + 2×contracts + lines/10, <20 low, >50 high, else medium.
func classify(functions, contracts, lines int) models.Complexity {
	score := functions + 2*contracts + lines/10
	switch {
	case score < 20:
		return models.ComplexityLow
	case score > 50:
		return models.ComplexityHigh
	default:
		return models.ComplexityMedium
	}
}

// stripComments removes // and /* */ comment content from one line,
// tracking block-comment state across lines.
func stripComments(line string, inBlock bool) (string, bool) {
	var b strings.Builder
	i := 0
	for i < len(line) {
		if inBlock {
			if end := strings.Index(line[i:], "*/"); end >= 0 {
				i += end + 2
				inBlock = false
				continue
			}
			return b.String(), true
		}
		if strings.HasPrefix(line[i:], "//") {
			return b.String(), false
		}
		if strings.HasPrefix(line[i:], "/*") {
			i += 2
			inBlock = true
			continue
		}
		b.WriteByte(line[i])
		i++
	}
	return b.String(), inBlock
}
