package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/solsentry/solsentry/internal/config"
	"github.com/solsentry/solsentry/internal/database"
	"github.com/solsentry/solsentry/internal/engine"
	"github.com/solsentry/solsentry/internal/render"
	"github.com/solsentry/solsentry/internal/rules"
	"github.com/solsentry/solsentry/internal/semantic"
	"github.com/solsentry/solsentry/internal/source"
	"github.com/solsentry/solsentry/models"
	"github.com/spf13/cobra"
)

var (
	auditChain     string
	auditMode      string
	auditBranch    string
	auditGitToken  string
	auditOutputFmt string
	auditNoSave    bool
)

var auditCmd = &cobra.Command{
	Use:   "audit <target>",
	Short: "Audit a Solidity contract",
	Long: `Audits the given target and prints a scored report. The target may be
a local .sol file, a directory of contracts, a git repository URL, or a
0x-prefixed contract address with verified source on Etherscan.

Examples:
  solsentry audit contracts/Vault.sol
  solsentry audit ./contracts --format json
  solsentry audit https://github.com/example/protocol.git --branch main
  solsentry audit 0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed --chain ethereum`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().StringVar(&auditChain, "chain", "", "Target chain name passed to the semantic analyser")
	auditCmd.Flags().StringVar(&auditMode, "mode", "standard", "Analysis mode: quick|standard|deep")
	auditCmd.Flags().StringVar(&auditBranch, "branch", "", "Branch for git targets (default: HEAD)")
	auditCmd.Flags().StringVar(&auditGitToken, "token", "", "HTTPS token for private git targets")
	auditCmd.Flags().StringVar(&auditOutputFmt, "format", "table", "Output format: table|json")
	auditCmd.Flags().BoolVar(&auditNoSave, "no-save", false, "Do not persist the report to audit history")
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	target := args[0]

	if auditOutputFmt != "table" && auditOutputFmt != "json" {
		return fmt.Errorf("invalid output format %q (valid: table, json)", auditOutputFmt)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	docs, err := resolveTarget(ctx, cfg, target)
	if err != nil {
		return fmt.Errorf("resolving target: %w", err)
	}

	var store *database.ReportStore
	if !auditNoSave {
		db, err := database.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		store = database.NewReportStore(db)
	}

	var reports []*models.AuditReport
	for _, doc := range docs {
		report, err := eng.Audit(ctx, doc.Content, engine.AuditOptions{
			Chain:        auditChain,
			AnalysisMode: auditMode,
		})
		if err != nil {
			return fmt.Errorf("auditing %s: %w", doc.Name, err)
		}
		reports = append(reports, report)

		if store != nil {
			if err := store.Save(ctx, report, target+"#"+doc.Name); err != nil {
				slog.Warn("Failed to persist audit report", "audit_id", report.AuditID, "error", err)
			}
		}

		if auditOutputFmt == "table" {
			fmt.Println(render.Report(report, doc.Name))
		}
	}

	if auditOutputFmt == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if len(reports) == 1 {
			return enc.Encode(reports[0])
		}
		return enc.Encode(reports)
	}
	return nil
}

// buildEngine assembles the audit pipeline from config: the static rule
// table (with any configured overrides) plus the semantic provider chain.
func buildEngine(cfg *config.Config) (*engine.Engine, error) {
	table := rules.DefaultRules()
	if cfg.Rules.OverridesPath != "" {
		overrides, err := rules.LoadOverrides(cfg.Rules.OverridesPath)
		if err != nil {
			return nil, fmt.Errorf("loading rule overrides: %w", err)
		}
		table = rules.Apply(table, overrides)
	}

	provider, err := semantic.New(cfg.Semantic)
	if err != nil {
		return nil, fmt.Errorf("configuring semantic provider: %w", err)
	}
	slog.Debug("Audit engine assembled", "rules", len(table), "provider", provider.Name())

	return engine.New(cfg.Engine, rules.NewChecker(table), semantic.NewAdapter(provider)), nil
}

// resolveTarget loads the Solidity documents behind a CLI target.
func resolveTarget(ctx context.Context, cfg *config.Config, target string) ([]source.Document, error) {
	switch source.Detect(target) {
	case source.KindAddress:
		return source.NewEtherscanClient(cfg.Etherscan).Fetch(ctx, target)
	case source.KindGit:
		docs, commit, err := source.ReadGit(ctx, target, source.CloneOptions{
			Token:  auditGitToken,
			Branch: auditBranch,
		})
		if err == nil {
			slog.Info("Repository cloned", "url", target, "commit", commit, "contracts", len(docs))
		}
		return docs, err
	default:
		return source.ReadLocal(target)
	}
}
