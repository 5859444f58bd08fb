// Package render formats audit reports for the terminal using lipgloss.
// JSON output lives in the commands themselves; this package only does the
// human-readable table form.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/solsentry/solsentry/models"
)

// Report renders one audit report as a styled terminal block.
func Report(report *models.AuditReport, target string) string {
	var b strings.Builder

	title := "Audit " + report.AuditID
	if target != "" {
		title += "  " + dimStyle.Render(target)
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	b.WriteString(boxStyle.Render(scoreBlock(report)) + "\n\n")

	if report.Source != nil {
		b.WriteString(dimStyle.Render(sourceLine(report.Source)) + "\n\n")
	}

	if len(report.Findings) == 0 {
		b.WriteString(okStyle.Render("No findings.") + "\n")
	} else {
		b.WriteString(headerStyle.Render(fmt.Sprintf("Findings (%d)", len(report.Findings))) + "\n")
		for _, f := range report.Findings {
			b.WriteString(findingLine(f) + "\n")
		}
	}

	if len(report.Recommendations) > 0 {
		b.WriteString("\n" + headerStyle.Render("Recommendations") + "\n")
		for _, rec := range report.Recommendations {
			b.WriteString("  • " + rec + "\n")
		}
	}

	if report.Summary != "" {
		b.WriteString("\n" + report.Summary + "\n")
	}
	if report.SemanticDegraded {
		b.WriteString(dimStyle.Render("Semantic analysis was unavailable for this audit.") + "\n")
	}
	return b.String()
}

func scoreBlock(report *models.AuditReport) string {
	risk := riskStyle(report.Scores.RiskLevel).Render(string(report.Scores.RiskLevel))
	return lipgloss.JoinHorizontal(lipgloss.Top,
		scoreCell("Security", report.Scores.Security),
		scoreCell("Quality", report.Scores.Quality),
		scoreCell("Gas", report.Scores.Gas),
		lipgloss.NewStyle().Width(16).Render(
			lipgloss.JoinVertical(lipgloss.Center, headerStyle.Render("Risk"), risk)),
	)
}

func scoreCell(label string, score int) string {
	style := okStyle
	switch {
	case score <= 30:
		style = criticalStyle
	case score <= 50:
		style = highStyle
	case score <= 70:
		style = mediumStyle
	}
	return lipgloss.NewStyle().Width(12).Render(
		lipgloss.JoinVertical(lipgloss.Center,
			headerStyle.Render(label),
			style.Render(fmt.Sprintf("%d", score))))
}

func sourceLine(unit *models.SourceUnit) string {
	return fmt.Sprintf("%d lines, %d contract(s), %d function(s), %s complexity",
		unit.LineCount, len(unit.Contracts), len(unit.Functions), unit.Complexity)
}

func findingLine(f models.Finding) string {
	sev := severityStyle(f.Severity).Render(strings.ToUpper(string(f.Severity)))
	loc := ""
	if f.Location.HasLine() {
		loc = fmt.Sprintf("L%d", f.Location.Line)
		if f.Location.Function != "" {
			loc += " " + f.Location.Function + "()"
		}
	}
	parts := []string{"  " + sev, f.Category}
	if loc != "" {
		parts = append(parts, dimStyle.Render(loc))
	}
	parts = append(parts, f.Message)
	if f.Source == models.SourceSemantic && f.Confidence > 0 {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("(confidence %.2f)", f.Confidence)))
	}
	return strings.Join(parts, "  ")
}

// History renders stored audit rows as a compact table.
func History(rows []HistoryRow) string {
	if len(rows) == 0 {
		return dimStyle.Render("No audits recorded yet.") + "\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-34s %-20s %-9s %-9s %-30s", "AUDIT", "CREATED", "SECURITY", "RISK", "TARGET")) + "\n")
	for _, row := range rows {
		risk := riskStyle(models.RiskLevel(row.RiskLevel)).Render(fmt.Sprintf("%-9s", row.RiskLevel))
		b.WriteString(fmt.Sprintf("%-34s %-20s %-9d %s %-30s\n",
			truncate(row.AuditID, 34), row.CreatedAt, row.SecurityScore, risk, truncate(row.Target, 30)))
	}
	return b.String()
}

// HistoryRow is the subset of a stored report the history table shows.
type HistoryRow struct {
	AuditID       string
	CreatedAt     string
	SecurityScore int
	RiskLevel     string
	Target        string
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
