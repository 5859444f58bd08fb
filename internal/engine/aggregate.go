package engine

import "github.com/solsentry/solsentry/models"

// aggregate merges static and semantic findings into one deduplicated list.
// Insertion order is static first, then semantic, which keeps the result
// deterministic. When a semantic finding duplicates a static one, the
// semantic record wins (richer description) but keeps the static record's
// position.
func aggregate(static, semantic []models.Finding, lineWindow int) []models.Finding {
	out := make([]models.Finding, 0, len(static)+len(semantic))

	add := func(f models.Finding) {
		for i, existing := range out {
			if !sameIssue(existing, f, lineWindow) {
				continue
			}
			if existing.Source == models.SourceStatic && f.Source == models.SourceSemantic {
				out[i] = f
			}
			return
		}
		out = append(out, f)
	}

	for _, f := range static {
		add(f)
	}
	for _, f := range semantic {
		add(f)
	}
	return out
}

// sameIssue implements the dedup equality: same kind and category with line
// numbers within the window. Findings without line information only collapse
// against each other.
func sameIssue(a, b models.Finding, lineWindow int) bool {
	if a.Kind != b.Kind || a.Category != b.Category {
		return false
	}
	if !a.Location.HasLine() || !b.Location.HasLine() {
		return !a.Location.HasLine() && !b.Location.HasLine()
	}
	d := a.Location.Line - b.Location.Line
	if d < 0 {
		d = -d
	}
	return d <= lineWindow
}
