package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/solsentry/solsentry/internal/config"
	"github.com/solsentry/solsentry/internal/database"
	"github.com/solsentry/solsentry/internal/render"
	"github.com/spf13/cobra"
)

var (
	historyLimit     int
	historyOutputFmt string
)

var historyCmd = &cobra.Command{
	Use:   "history [audit-id]",
	Short: "Browse stored audit reports",
	Long: `Without arguments, lists the most recent audits. With an audit id,
prints the full stored report.

Examples:
  solsentry history
  solsentry history --limit 50
  solsentry history 3f2a9c... --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of audits to list")
	historyCmd.Flags().StringVar(&historyOutputFmt, "format", "table", "Output format: table|json")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	db, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	store := database.NewReportStore(db)

	if len(args) == 1 {
		return showAudit(ctx, store, args[0])
	}

	rows, err := store.List(ctx, historyLimit)
	if err != nil {
		return err
	}

	if historyOutputFmt == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	table := make([]render.HistoryRow, len(rows))
	for i, row := range rows {
		table[i] = render.HistoryRow{
			AuditID:       row.AuditID,
			CreatedAt:     row.CreatedAt,
			SecurityScore: row.SecurityScore,
			RiskLevel:     row.RiskLevel,
			Target:        row.Target,
		}
	}
	fmt.Print(render.History(table))
	return nil
}

func showAudit(ctx context.Context, store *database.ReportStore, auditID string) error {
	report, target, err := store.Get(ctx, auditID)
	if err != nil {
		return err
	}

	if historyOutputFmt == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Println(render.Report(report, target))
	return nil
}
