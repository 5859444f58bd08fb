// Package gateway is the long-running audit daemon: a localhost REST API
// over the audit engine and history store, plus a cron scheduler that
// re-audits configured watchlist targets.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/solsentry/solsentry/internal/config"
	"github.com/solsentry/solsentry/internal/database"
	"github.com/solsentry/solsentry/internal/engine"
	"github.com/solsentry/solsentry/internal/source"
	"github.com/solsentry/solsentry/models"
)

// Auditor runs one audit. Satisfied by *engine.Engine.
type Auditor interface {
	Audit(ctx context.Context, src string, opts engine.AuditOptions) (*models.AuditReport, error)
}

// Gateway serves the audit REST API. Call Start() to begin serving.
type Gateway struct {
	cfg       *config.Config
	auditor   Auditor
	store     *database.ReportStore
	fetcher   *source.EtherscanClient
	scheduler *scheduler
	validate  *validator.Validate
	startedAt time.Time
}

// New creates a Gateway over an auditor and a report store.
func New(cfg *config.Config, auditor Auditor, store *database.ReportStore) *Gateway {
	gw := &Gateway{
		cfg:       cfg,
		auditor:   auditor,
		store:     store,
		fetcher:   source.NewEtherscanClient(cfg.Etherscan),
		validate:  validator.New(),
		startedAt: time.Now(),
	}
	gw.scheduler = newScheduler(cfg.Gateway.Schedule, gw.runWatchlist)
	return gw
}

// Start runs the gateway until ctx is cancelled: it starts the watchlist
// scheduler and binds the HTTP server (blocks until shutdown).
func (gw *Gateway) Start(ctx context.Context) error {
	port := gw.cfg.Gateway.Port
	if port == 0 {
		port = config.DefaultGatewayPort
	}
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	if err := gw.scheduler.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: buildHandler(gw),
	}

	go func() {
		<-ctx.Done()
		gw.scheduler.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("gateway: listening", "addr", "http://"+addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// runWatchlist audits every configured watchlist target. Failures are
// logged and skipped so one broken target cannot stall the sweep.
func (gw *Gateway) runWatchlist() {
	targets := gw.cfg.Gateway.Watchlist
	if len(targets) == 0 {
		return
	}
	slog.Info("gateway: watchlist sweep started", "targets", len(targets))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	for _, target := range targets {
		if err := gw.auditTarget(ctx, target); err != nil {
			slog.Warn("gateway: watchlist target failed", "target", target, "error", err)
		}
	}
	slog.Info("gateway: watchlist sweep finished")
}

// resolveTarget turns a target string into its Solidity documents.
func (gw *Gateway) resolveTarget(ctx context.Context, target string) ([]source.Document, error) {
	switch source.Detect(target) {
	case source.KindAddress:
		return gw.fetcher.Fetch(ctx, target)
	case source.KindGit:
		docs, _, err := source.ReadGit(ctx, target, source.CloneOptions{})
		return docs, err
	default:
		return source.ReadLocal(target)
	}
}

// auditTarget resolves a target to its documents, audits each and stores
// the resulting reports.
func (gw *Gateway) auditTarget(ctx context.Context, target string) error {
	docs, err := gw.resolveTarget(ctx, target)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		report, err := gw.auditor.Audit(ctx, doc.Content, engine.AuditOptions{})
		if err != nil {
			return fmt.Errorf("auditing %s: %w", doc.Name, err)
		}
		gw.persist(ctx, report, target+"#"+doc.Name)
	}
	return nil
}

// persist saves one report, logging failures instead of propagating them.
// Storage is best-effort: a failure never invalidates the computed report.
func (gw *Gateway) persist(ctx context.Context, report *models.AuditReport, target string) bool {
	if err := gw.store.Save(ctx, report, target); err != nil {
		slog.Warn("gateway: storing report failed",
			"audit_id", report.AuditID, "target", target, "error", err)
		return false
	}
	return true
}
