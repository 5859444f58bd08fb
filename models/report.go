package models

import "time"

// ScoreSet holds the three audit sub-scores and the derived risk level.
// All values are clamped to [0,100] at construction and never mutated.
type ScoreSet struct {
	Security  int       `json:"security"`
	Quality   int       `json:"quality"`
	Gas       int       `json:"gas"`
	RiskLevel RiskLevel `json:"risk_level"`
}

// AuditReport is the aggregate result of one audit invocation. It is built
// once by the engine, handed to the caller and (best-effort) to storage,
// and read-only afterwards.
type AuditReport struct {
	AuditID         string      `json:"audit_id"`
	CreatedAt       time.Time   `json:"created_at"`
	Chain           string      `json:"chain,omitempty"`
	AnalysisMode    string      `json:"analysis_mode,omitempty"`
	Source          *SourceUnit `json:"source"`
	Findings        []Finding   `json:"findings"`
	Scores          ScoreSet    `json:"scores"`
	Summary         string      `json:"summary"`
	Recommendations []string    `json:"recommendations"`
	ExecutionTimeMs int64       `json:"execution_time_ms"`
	// SemanticDegraded is set when the semantic collaborator failed or
	// timed out and the fallback finding was substituted.
	SemanticDegraded bool `json:"semantic_degraded,omitempty"`
}

// CountBySeverity tallies findings per severity, for summaries and CLI output.
func (r *AuditReport) CountBySeverity() map[Severity]int {
	out := make(map[Severity]int, 4)
	for _, f := range r.Findings {
		out[f.Severity]++
	}
	return out
}
