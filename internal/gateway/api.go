package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/solsentry/solsentry/internal/engine"
	"github.com/solsentry/solsentry/internal/rules"
	"github.com/solsentry/solsentry/models"
)

// buildHandler wires all routes onto a fresh mux.
func buildHandler(gw *Gateway) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", gw.handleHealth)
	mux.HandleFunc("POST /api/audits", gw.handleCreateAudit)
	mux.HandleFunc("GET /api/audits", gw.handleListAudits)
	mux.HandleFunc("GET /api/audits/{id}", gw.handleGetAudit)
	mux.HandleFunc("DELETE /api/audits/{id}", gw.handleDeleteAudit)
	mux.HandleFunc("GET /api/rules", gw.handleListRules)
	return mux
}

// --- HTTP response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- Handlers ---

func (gw *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(gw.startedAt).Seconds()),
	})
}

// auditRequest is the POST /api/audits payload. Either inline source or a
// resolvable target must be provided.
type auditRequest struct {
	Source       string `json:"source"        validate:"required_without=Target"`
	Target       string `json:"target"        validate:"required_without=Source,omitempty,max=512"`
	Chain        string `json:"chain"         validate:"omitempty,max=64"`
	AnalysisMode string `json:"analysis_mode" validate:"omitempty,oneof=quick standard deep"`
	// NoSave skips history persistence for this audit.
	NoSave bool `json:"no_save"`
}

type auditResponse struct {
	Reports []*models.AuditReport `json:"reports"`
	// StorageDegraded is set when a report was computed but could not be
	// persisted. Persistence is best-effort; the reports are still returned.
	StorageDegraded bool `json:"storage_degraded,omitempty"`
}

func (gw *Gateway) handleCreateAudit(w http.ResponseWriter, r *http.Request) {
	var req auditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}
	if err := gw.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, http.StatusBadRequest, "invalid field "+verrs[0].Field())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := engine.AuditOptions{Chain: req.Chain, AnalysisMode: req.AnalysisMode}

	var (
		reports         []*models.AuditReport
		storageDegraded bool
	)
	if req.Source != "" {
		report, err := gw.auditor.Audit(r.Context(), req.Source, opts)
		if err != nil {
			writeAuditError(w, err)
			return
		}
		if !req.NoSave && !gw.persist(r.Context(), report, "api") {
			storageDegraded = true
		}
		reports = append(reports, report)
	} else {
		var err error
		reports, storageDegraded, err = gw.auditResolvedTarget(r, req, opts)
		if err != nil {
			writeAuditError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, auditResponse{Reports: reports, StorageDegraded: storageDegraded})
}

func (gw *Gateway) auditResolvedTarget(r *http.Request, req auditRequest, opts engine.AuditOptions) ([]*models.AuditReport, bool, error) {
	docs, err := gw.resolveTarget(r.Context(), req.Target)
	if err != nil {
		return nil, false, err
	}
	reports := make([]*models.AuditReport, 0, len(docs))
	storageDegraded := false
	for _, doc := range docs {
		report, err := gw.auditor.Audit(r.Context(), doc.Content, opts)
		if err != nil {
			return nil, false, err
		}
		if !req.NoSave && !gw.persist(r.Context(), report, req.Target+"#"+doc.Name) {
			storageDegraded = true
		}
		reports = append(reports, report)
	}
	return reports, storageDegraded, nil
}

// writeAuditError maps engine precondition errors to 400 and resolution
// failures to 502.
func writeAuditError(w http.ResponseWriter, err error) {
	if errors.Is(err, engine.ErrInputEmpty) || errors.Is(err, engine.ErrInputTooLarge) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

// auditListItem is the trimmed history row for list responses.
type auditListItem struct {
	AuditID          string `json:"audit_id"`
	CreatedAt        string `json:"created_at"`
	Target           string `json:"target"`
	Chain            string `json:"chain,omitempty"`
	SecurityScore    int    `json:"security_score"`
	QualityScore     int    `json:"quality_score"`
	GasScore         int    `json:"gas_score"`
	RiskLevel        string `json:"risk_level"`
	FindingCount     int    `json:"finding_count"`
	SemanticDegraded bool   `json:"semantic_degraded"`
}

func (gw *Gateway) handleListAudits(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	rows, err := gw.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	items := make([]auditListItem, len(rows))
	for i, row := range rows {
		items[i] = auditListItem{
			AuditID:          row.AuditID,
			CreatedAt:        row.CreatedAt,
			Target:           row.Target,
			Chain:            row.Chain,
			SecurityScore:    row.SecurityScore,
			QualityScore:     row.QualityScore,
			GasScore:         row.GasScore,
			RiskLevel:        row.RiskLevel,
			FindingCount:     row.FindingCount,
			SemanticDegraded: row.SemanticDegraded != 0,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (gw *Gateway) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing audit id")
		return
	}

	report, target, err := gw.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "audit not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"target": target,
		"report": report,
	})
}

func (gw *Gateway) handleDeleteAudit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing audit id")
		return
	}

	deleted, err := gw.store.Delete(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "audit not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// ruleInfo describes one registered static rule.
type ruleInfo struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
}

func (gw *Gateway) handleListRules(w http.ResponseWriter, r *http.Request) {
	defaults := rules.DefaultRules()
	infos := make([]ruleInfo, len(defaults))
	for i, rule := range defaults {
		infos[i] = ruleInfo{
			ID:       rule.ID,
			Category: rule.Category,
			Kind:     string(rule.Kind),
			Severity: string(rule.Severity),
			Title:    rule.Title,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": infos})
}
