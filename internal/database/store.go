package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/solsentry/solsentry/models"
)

// ReportRecord is the flattened audit_reports row. Findings and
// recommendations are serialised as JSON so the schema stays stable as the
// finding model grows. Column order must match the field order here (Get
// scans by position).
type ReportRecord struct {
	ID            int64  `db:"id"`
	AuditID       string `db:"audit_id"`
	CreatedAt     string `db:"created_at"`
	Chain         string `db:"chain"`
	AnalysisMode  string `db:"analysis_mode"`
	Target        string `db:"target"`
	LineCount     int    `db:"line_count"`
	ContractCount int    `db:"contract_count"`
	FunctionCount int    `db:"function_count"`
	Complexity    string `db:"complexity"`
	SecurityScore int    `db:"security_score"`
	QualityScore  int    `db:"quality_score"`
	GasScore      int    `db:"gas_score"`
	RiskLevel     string `db:"risk_level"`
	FindingCount  int    `db:"finding_count"`
	// Stored as 0/1 so the column type is portable across backends.
	SemanticDegraded int    `db:"semantic_degraded"`
	ExecutionMs      int64  `db:"execution_ms"`
	Summary          string `db:"summary"`
	FindingsJSON     string `db:"findings_json"`
	RecommendsJSON   string `db:"recommendations_json"`
}

// reportColumns lists the audit_reports columns in ReportRecord field order.
const reportColumns = `id, audit_id, created_at, chain, analysis_mode, target,
	line_count, contract_count, function_count, complexity,
	security_score, quality_score, gas_score, risk_level, finding_count,
	semantic_degraded, execution_ms, summary, findings_json, recommendations_json`

// ReportStore persists audit reports over any DB backend.
type ReportStore struct {
	db DB
}

func NewReportStore(db DB) *ReportStore {
	return &ReportStore{db: db}
}

// Save upserts the report keyed by audit_id. Re-running an audit with the
// same identifier replaces the stored row.
func (s *ReportStore) Save(ctx context.Context, report *models.AuditReport, target string) error {
	findings, err := json.Marshal(report.Findings)
	if err != nil {
		return fmt.Errorf("encoding findings: %w", err)
	}
	recs, err := json.Marshal(report.Recommendations)
	if err != nil {
		return fmt.Errorf("encoding recommendations: %w", err)
	}

	degraded := 0
	if report.SemanticDegraded {
		degraded = 1
	}
	rec := ReportRecord{
		AuditID:          report.AuditID,
		CreatedAt:        report.CreatedAt.UTC().Format(time.RFC3339),
		Chain:            report.Chain,
		AnalysisMode:     report.AnalysisMode,
		Target:           target,
		LineCount:        report.Source.LineCount,
		ContractCount:    len(report.Source.Contracts),
		FunctionCount:    len(report.Source.Functions),
		Complexity:       string(report.Source.Complexity),
		SecurityScore:    report.Scores.Security,
		QualityScore:     report.Scores.Quality,
		GasScore:         report.Scores.Gas,
		RiskLevel:        string(report.Scores.RiskLevel),
		FindingCount:     len(report.Findings),
		SemanticDegraded: degraded,
		ExecutionMs:      report.ExecutionTimeMs,
		Summary:          report.Summary,
		FindingsJSON:     string(findings),
		RecommendsJSON:   string(recs),
	}
	return s.db.Upsert(ctx, "audit_reports", rec, []string{"audit_id"})
}

// List returns the most recent audit rows, newest first. limit <= 0 means
// the default page of 20.
func (s *ReportStore) List(ctx context.Context, limit int) ([]ReportRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []ReportRecord
	err := s.db.Select(ctx, &out,
		"SELECT "+reportColumns+" FROM audit_reports ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing audit reports: %w", err)
	}
	return out, nil
}

// Get loads one stored report by audit_id, rehydrating the findings and
// recommendations. The second return is the audited target.
func (s *ReportStore) Get(ctx context.Context, auditID string) (*models.AuditReport, string, error) {
	var rec ReportRecord
	err := s.db.Get(ctx, &rec,
		"SELECT "+reportColumns+" FROM audit_reports WHERE audit_id = ?", auditID)
	if err != nil {
		return nil, "", fmt.Errorf("loading audit %s: %w", auditID, err)
	}
	report, err := rec.Report()
	if err != nil {
		return nil, "", err
	}
	return report, rec.Target, nil
}

// Delete removes a stored report by audit_id. The bool reports whether a
// matching row existed.
func (s *ReportStore) Delete(ctx context.Context, auditID string) (bool, error) {
	var rec struct {
		ID int64 `db:"id"`
	}
	err := s.db.Get(ctx, &rec, "SELECT id FROM audit_reports WHERE audit_id = ?", auditID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up audit %s: %w", auditID, err)
	}
	if err := s.db.Exec(ctx, "DELETE FROM audit_reports WHERE id = ?", rec.ID); err != nil {
		return false, fmt.Errorf("deleting audit %s: %w", auditID, err)
	}
	return true, nil
}

// Report rebuilds the full AuditReport from a stored row.
func (r ReportRecord) Report() (*models.AuditReport, error) {
	var findings []models.Finding
	if r.FindingsJSON != "" {
		if err := json.Unmarshal([]byte(r.FindingsJSON), &findings); err != nil {
			return nil, fmt.Errorf("decoding findings for %s: %w", r.AuditID, err)
		}
	}
	var recs []string
	if r.RecommendsJSON != "" {
		if err := json.Unmarshal([]byte(r.RecommendsJSON), &recs); err != nil {
			return nil, fmt.Errorf("decoding recommendations for %s: %w", r.AuditID, err)
		}
	}

	createdAt, err := time.Parse(time.RFC3339, r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at for %s: %w", r.AuditID, err)
	}

	return &models.AuditReport{
		AuditID:      r.AuditID,
		CreatedAt:    createdAt,
		Chain:        r.Chain,
		AnalysisMode: r.AnalysisMode,
		Source: &models.SourceUnit{
			LineCount:  r.LineCount,
			Complexity: models.Complexity(r.Complexity),
		},
		Findings: findings,
		Scores: models.ScoreSet{
			Security:  r.SecurityScore,
			Quality:   r.QualityScore,
			Gas:       r.GasScore,
			RiskLevel: models.RiskLevel(r.RiskLevel),
		},
		Summary:          r.Summary,
		Recommendations:  recs,
		ExecutionTimeMs:  r.ExecutionMs,
		SemanticDegraded: r.SemanticDegraded != 0,
	}, nil
}
