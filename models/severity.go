package models

// Severity classifies how serious a finding is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Deduction returns the fixed security-score deduction for s.
// The table is part of the scoring contract and must not drift.
func (s Severity) Deduction() int {
	switch s {
	case SeverityCritical:
		return 25
	case SeverityHigh:
		return 15
	case SeverityMedium:
		return 8
	case SeverityLow:
		return 3
	default:
		return 0
	}
}

// Weight returns a numeric rank for sorting (higher = more severe).
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

func (s Severity) String() string {
	return string(s)
}

// MapSeverity normalises collaborator-reported severity strings.
// Unknown or empty values coerce to medium rather than being dropped.
func MapSeverity(raw string) Severity {
	switch raw {
	case "critical", "Critical", "CRITICAL":
		return SeverityCritical
	case "high", "High", "HIGH", "error", "ERROR":
		return SeverityHigh
	case "medium", "Medium", "MEDIUM", "moderate", "MODERATE", "warning", "WARNING":
		return SeverityMedium
	case "low", "Low", "LOW", "info", "INFO", "informational":
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// RiskLevel is the discrete risk bucket derived from the security score.
type RiskLevel string

const (
	RiskCritical RiskLevel = "Critical"
	RiskHigh     RiskLevel = "High"
	RiskMedium   RiskLevel = "Medium"
	RiskLow      RiskLevel = "Low"
)

func (r RiskLevel) String() string {
	return string(r)
}
