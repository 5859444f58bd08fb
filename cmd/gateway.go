package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/solsentry/solsentry/internal/config"
	"github.com/solsentry/solsentry/internal/database"
	"github.com/solsentry/solsentry/internal/gateway"
	"github.com/spf13/cobra"
)

var gatewayPort int

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the solsentry audit daemon",
	Long: `Starts the solsentry gateway: a long-running daemon exposing the audit
engine over a local HTTP API (default: http://127.0.0.1:6180) and
re-auditing configured watchlist targets on a cron schedule.

Example schedules:
  "0 2 * * *"   every night at 02:00
  "@every 6h"   every 6 hours
  "@daily"      once per day at midnight

Quick API reference:
  GET  /health              liveness check
  POST /api/audits          audit inline source or a target
  GET  /api/audits          list stored audits (?limit=N)
  GET  /api/audits/{id}     fetch one stored report
  GET  /api/rules           list the static rule set`,
	RunE: runGateway,
}

func init() {
	gatewayCmd.Flags().IntVar(&gatewayPort, "port", 0,
		"HTTP port to listen on (default 6180, overrides config)")
}

func runGateway(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		fmt.Println("\nShutting down gateway gracefully...")
		cancel()
	}()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if gatewayPort > 0 {
		cfg.Gateway.Port = gatewayPort
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = config.DefaultGatewayPort
	}

	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	fmt.Printf("solsentry gateway starting\n")
	fmt.Printf("  API       : http://127.0.0.1:%d\n", cfg.Gateway.Port)
	fmt.Printf("  Database  : %s\n", db.Driver())
	fmt.Printf("  Watchlist : %d target(s)\n", len(cfg.Gateway.Watchlist))
	if cfg.Gateway.Schedule != "" {
		fmt.Printf("  Schedule  : %s\n", cfg.Gateway.Schedule)
	}
	fmt.Println("\nPress Ctrl+C to stop gracefully.")

	gw := gateway.New(cfg, eng, database.NewReportStore(db))
	return gw.Start(ctx)
}
