package rules

import (
	"regexp"
	"strings"

	"github.com/solsentry/solsentry/models"
)

var (
	reFuncHeader = regexp.MustCompile(`^\s*function\s+([A-Za-z_$][\w$]*)\s*\(`)
	reLoopHeader = regexp.MustCompile(`^\s*(for|while)\s*\(`)
	// An assignment to something that is not an obviously local declaration.
	reAssignment  = regexp.MustCompile(`[A-Za-z_$][\w$\[\]\.\s]*(\+=|-=|\*=|/=|=)[^=]`)
	reDeclaration = regexp.MustCompile(`^\s*(uint\d*|int\d*|bool|address|bytes\d*|string|mapping)\b.*=`)
	reLocalMemory = regexp.MustCompile(`\b(memory|calldata)\b`)
)

// Checker applies a rule table to source text line by line.
type Checker struct {
	rules []Rule
}

// NewChecker builds a checker over the given rules (normally DefaultRules,
// possibly reduced or reweighted by overrides).
func NewChecker(rules []Rule) *Checker {
	return &Checker{rules: rules}
}

// Check scans the source and returns findings in (line, rule) order.
func (c *Checker) Check(source string) []models.Finding {
	contexts := buildLineContexts(source)

	var findings []models.Finding
	for _, lc := range contexts {
		if strings.TrimSpace(lc.Text) == "" {
			continue
		}
		for _, rule := range c.rules {
			if f, ok := rule.Check(lc); ok {
				findings = append(findings, f)
			}
		}
	}
	return findings
}

// buildLineContexts walks the source once, stripping comments and tracking
// the enclosing function, loop nesting, and later state writes per function.
func buildLineContexts(source string) []LineContext {
	rawLines := strings.Split(source, "\n")
	contexts := make([]LineContext, len(rawLines))

	type frame struct {
		kind  string // "function" or "loop"
		name  string
		depth int // brace depth at which the frame closes
	}
	var stack []frame
	depth := 0
	inBlock := false

	for i, raw := range rawLines {
		text, next := stripComments(raw, inBlock)
		inBlock = next

		lc := LineContext{Number: i + 1, Text: text}
		for _, fr := range stack {
			if fr.kind == "function" {
				lc.Function = fr.name
			}
			if fr.kind == "loop" {
				lc.InLoop = true
			}
		}

		// Open frames seen on this line before counting its braces: the
		// header line itself belongs to the frame.
		if m := reFuncHeader.FindStringSubmatch(text); m != nil {
			stack = append(stack, frame{kind: "function", name: m[1], depth: depth})
			lc.Function = m[1]
		} else if reLoopHeader.MatchString(text) {
			stack = append(stack, frame{kind: "loop", depth: depth})
		}

		depth += strings.Count(text, "{") - strings.Count(text, "}")
		for len(stack) > 0 && depth <= stack[len(stack)-1].depth {
			stack = stack[:len(stack)-1]
		}

		contexts[i] = lc
	}

	markStateWrites(contexts)
	return contexts
}

// markStateWrites sets StateWriteAfter on every line that is followed, within
// the same function, by a storage-looking assignment.
func markStateWrites(contexts []LineContext) {
	writesByFunc := make(map[string][]int)
	for _, lc := range contexts {
		if lc.Function != "" && isStateWrite(lc.Text) {
			writesByFunc[lc.Function] = append(writesByFunc[lc.Function], lc.Number)
		}
	}
	for i := range contexts {
		lc := &contexts[i]
		if lc.Function == "" {
			continue
		}
		for _, w := range writesByFunc[lc.Function] {
			if w > lc.Number {
				lc.StateWriteAfter = true
				break
			}
		}
	}
}

// isStateWrite reports whether the line looks like an assignment to storage:
// an assignment that is neither a typed local declaration nor memory-scoped.
func isStateWrite(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || reLoopHeader.MatchString(trimmed) {
		return false
	}
	if !reAssignment.MatchString(trimmed) {
		return false
	}
	if reDeclaration.MatchString(trimmed) || reLocalMemory.MatchString(trimmed) {
		return false
	}
	// Comparison and require lines are not writes.
	if strings.HasPrefix(trimmed, "require") || strings.HasPrefix(trimmed, "if") ||
		strings.HasPrefix(trimmed, "assert") || strings.HasPrefix(trimmed, "return") {
		return false
	}
	return true
}

// stripComments removes // and /* */ content, tracking block state.
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
