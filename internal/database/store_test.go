package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/solsentry/solsentry/internal/config"
	"github.com/solsentry/solsentry/models"
)

func newTestStore(t *testing.T) *ReportStore {
	t.Helper()
	db, err := NewSQLite(config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "solsentry.db"),
	})
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return NewReportStore(db)
}

func sampleReport(id string) *models.AuditReport {
	return &models.AuditReport{
		AuditID:      id,
		CreatedAt:    time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		Chain:        "ethereum",
		AnalysisMode: "standard",
		Source: &models.SourceUnit{
			LineCount:  42,
			Contracts:  []string{"Example"},
			Complexity: models.ComplexityMedium,
		},
		Findings: []models.Finding{{
			Kind:     models.KindSecurity,
			Category: models.CategoryAccessControl,
			Severity: models.SeverityHigh,
			Message:  "tx.origin used for authorisation",
			Location: models.Location{Line: 12, Function: "auth"},
			Source:   models.SourceStatic,
		}},
		Scores: models.ScoreSet{
			Security: 77, Quality: 75, Gas: 75,
			RiskLevel: models.RiskLow,
		},
		Summary:         "1 finding.",
		Recommendations: []string{"Restrict privileged paths with msg.sender-based access control."},
		ExecutionTimeMs: 18,
	}
}

func TestReportStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, sampleReport("audit-1"), "vault.sol"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, target, err := store.Get(ctx, "audit-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if target != "vault.sol" {
		t.Errorf("target = %q, want vault.sol", target)
	}
	if got.Scores.Security != 77 || got.Scores.RiskLevel != models.RiskLow {
		t.Errorf("scores = %+v", got.Scores)
	}
	if len(got.Findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(got.Findings))
	}
	f := got.Findings[0]
	if f.Category != models.CategoryAccessControl || f.Location.Line != 12 || f.Location.Function != "auth" {
		t.Errorf("finding round-trip broken: %+v", f)
	}
	if !got.CreatedAt.Equal(time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("created_at = %v", got.CreatedAt)
	}
	if len(got.Recommendations) != 1 {
		t.Errorf("recommendations = %v", got.Recommendations)
	}
}

func TestReportStoreUpsertReplacesByAuditID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := sampleReport("audit-1")
	if err := store.Save(ctx, first, "vault.sol"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second := sampleReport("audit-1")
	second.Scores.Security = 50
	second.Scores.RiskLevel = models.RiskHigh
	if err := store.Save(ctx, second, "vault.sol"); err != nil {
		t.Fatalf("Save (replace): %v", err)
	}

	rows, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1 after upsert", len(rows))
	}
	if rows[0].SecurityScore != 50 || rows[0].RiskLevel != string(models.RiskHigh) {
		t.Errorf("row not replaced: %+v", rows[0])
	}
}

func TestReportStoreListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		r := sampleReport(id)
		r.CreatedAt = r.CreatedAt.Add(time.Duration(i) * time.Hour)
		if err := store.Save(ctx, r, id+".sol"); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}

	rows, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (limit)", len(rows))
	}
	if rows[0].AuditID != "c" || rows[1].AuditID != "b" {
		t.Errorf("order = [%s %s], want [c b]", rows[0].AuditID, rows[1].AuditID)
	}
}

func TestReportStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, sampleReport("audit-1"), "vault.sol"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	deleted, err := store.Delete(ctx, "audit-1")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !deleted {
		t.Fatal("Delete must report the row existed")
	}
	if _, _, err := store.Get(ctx, "audit-1"); err == nil {
		t.Fatal("deleted audit must not be retrievable")
	}

	deleted, err = store.Delete(ctx, "audit-1")
	if err != nil {
		t.Fatalf("Delete (again): %v", err)
	}
	if deleted {
		t.Error("second delete must report no row")
	}
}

func TestGetMissingAudit(t *testing.T) {
	store := newTestStore(t)
	if _, _, err := store.Get(context.Background(), "nope"); err == nil {
		t.Fatal("expected an error for a missing audit id")
	}
}
