package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/solsentry/solsentry/internal/config"
	"github.com/solsentry/solsentry/internal/database"
	"github.com/solsentry/solsentry/internal/engine"
	"github.com/solsentry/solsentry/internal/rules"
	"github.com/solsentry/solsentry/internal/semantic"
	"github.com/solsentry/solsentry/models"
)

const vulnerableSource = `pragma solidity ^0.8.0;
contract Wallet {
    address owner;
    function withdraw() public {
        require(tx.origin == owner);
    }
}`

func newTestGateway(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := database.NewSQLite(config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "gateway.db"),
	})
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// No semantic provider configured: audits run static-only with the
	// degraded fallback, which keeps the tests hermetic.
	provider, err := semantic.New(config.SemanticConfig{})
	if err != nil {
		t.Fatalf("semantic.New: %v", err)
	}
	eng := engine.New(config.EngineConfig{},
		rules.NewChecker(rules.DefaultRules()),
		semantic.NewAdapter(provider))

	gw := New(&config.Config{}, eng, database.NewReportStore(db))
	srv := httptest.NewServer(buildHandler(gw))
	t.Cleanup(srv.Close)
	return srv
}

func postAudit(t *testing.T, srv *httptest.Server, payload string) (*http.Response, auditResponse) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/audits", "application/json", bytes.NewBufferString(payload))
	if err != nil {
		t.Fatalf("POST /api/audits: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var out auditResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return resp, out
}

func TestCreateAuditInlineSource(t *testing.T) {
	srv := newTestGateway(t)

	body, _ := json.Marshal(map[string]any{"source": vulnerableSource, "chain": "ethereum"})
	resp, out := postAudit(t, srv, string(body))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(out.Reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(out.Reports))
	}

	report := out.Reports[0]
	if report.AuditID == "" {
		t.Error("missing audit id")
	}
	found := false
	for _, f := range report.Findings {
		if f.Category == models.CategoryAccessControl && f.Location.Line == 5 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a tx.origin finding at line 5: %+v", report.Findings)
	}
	if !report.SemanticDegraded {
		t.Error("audits without a provider must be marked degraded")
	}

	// The audit must now appear in history.
	listResp, err := http.Get(srv.URL + "/api/audits")
	if err != nil {
		t.Fatalf("GET /api/audits: %v", err)
	}
	defer listResp.Body.Close()
	var list struct {
		Items []auditListItem `json:"items"`
	}
	if err := json.NewDecoder(listResp.Body).Decode(&list); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].AuditID != report.AuditID {
		t.Errorf("history items = %+v", list.Items)
	}

	// And be retrievable by id.
	getResp, err := http.Get(srv.URL + "/api/audits/" + report.AuditID)
	if err != nil {
		t.Fatalf("GET /api/audits/{id}: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Errorf("get status = %d", getResp.StatusCode)
	}
}

func TestCreateAuditNoSave(t *testing.T) {
	srv := newTestGateway(t)

	body, _ := json.Marshal(map[string]any{"source": vulnerableSource, "no_save": true})
	resp, _ := postAudit(t, srv, string(body))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	listResp, err := http.Get(srv.URL + "/api/audits")
	if err != nil {
		t.Fatal(err)
	}
	defer listResp.Body.Close()
	var list struct {
		Items []auditListItem `json:"items"`
	}
	if err := json.NewDecoder(listResp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list.Items) != 0 {
		t.Errorf("no_save audit must not be persisted: %+v", list.Items)
	}
}

func TestCreateAuditValidation(t *testing.T) {
	srv := newTestGateway(t)

	tests := []struct {
		name    string
		payload string
		status  int
	}{
		{"neither source nor target", `{}`, http.StatusBadRequest},
		{"bad analysis mode", fmt.Sprintf(`{"source": %q, "analysis_mode": "yolo"}`, "contract A {}"), http.StatusBadRequest},
		{"malformed json", `{"source": `, http.StatusBadRequest},
		{"blank source rejected by engine", `{"source": "   "}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postAudit(t, srv, tt.payload)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestCreateAuditStorageFailureStillReturnsReport(t *testing.T) {
	db, err := database.NewSQLite(config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "gateway.db"),
	})
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	// Close the handle so every save fails. Persistence is best-effort;
	// the computed report must still reach the caller.
	db.Close()

	provider, err := semantic.New(config.SemanticConfig{})
	if err != nil {
		t.Fatalf("semantic.New: %v", err)
	}
	eng := engine.New(config.EngineConfig{},
		rules.NewChecker(rules.DefaultRules()),
		semantic.NewAdapter(provider))
	gw := New(&config.Config{}, eng, database.NewReportStore(db))
	srv := httptest.NewServer(buildHandler(gw))
	t.Cleanup(srv.Close)

	body, _ := json.Marshal(map[string]any{"source": vulnerableSource})
	resp, out := postAudit(t, srv, string(body))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite the storage failure", resp.StatusCode)
	}
	if len(out.Reports) != 1 || out.Reports[0].AuditID == "" {
		t.Fatalf("the computed report must be returned: %+v", out.Reports)
	}
	if len(out.Reports[0].Findings) == 0 {
		t.Error("returned report lost its findings")
	}
	if !out.StorageDegraded {
		t.Error("response must flag that persistence failed")
	}
}

func TestDeleteAudit(t *testing.T) {
	srv := newTestGateway(t)

	body, _ := json.Marshal(map[string]any{"source": vulnerableSource})
	_, out := postAudit(t, srv, string(body))
	if len(out.Reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(out.Reports))
	}
	id := out.Reports[0].AuditID

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/audits/"+id, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	getResp, err := http.Get(srv.URL + "/api/audits/" + id)
	if err != nil {
		t.Fatal(err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", getResp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/api/audits/"+id, nil)
	again, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	again.Body.Close()
	if again.StatusCode != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", again.StatusCode)
	}
}

func TestGetMissingAuditReturns404(t *testing.T) {
	srv := newTestGateway(t)
	resp, err := http.Get(srv.URL + "/api/audits/does-not-exist")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHealthAndRules(t *testing.T) {
	srv := newTestGateway(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}

	rulesResp, err := http.Get(srv.URL + "/api/rules")
	if err != nil {
		t.Fatal(err)
	}
	defer rulesResp.Body.Close()
	var out struct {
		Rules []ruleInfo `json:"rules"`
	}
	if err := json.NewDecoder(rulesResp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Rules) != len(rules.DefaultRules()) {
		t.Errorf("rules = %d, want %d", len(out.Rules), len(rules.DefaultRules()))
	}
}
