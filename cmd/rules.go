package cmd

import (
	"fmt"
	"strings"

	"github.com/solsentry/solsentry/internal/config"
	"github.com/solsentry/solsentry/internal/rules"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the static rule set",
	Long: `Prints the builtin static rules after applying any overrides file
configured under rules.overrides_path. Disabled rules are omitted.`,
	RunE: runRules,
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	table := rules.DefaultRules()
	total := len(table)
	if cfg.Rules.OverridesPath != "" {
		overrides, err := rules.LoadOverrides(cfg.Rules.OverridesPath)
		if err != nil {
			return fmt.Errorf("loading rule overrides: %w", err)
		}
		table = rules.Apply(table, overrides)
	}

	fmt.Printf("%-20s %-16s %-9s %-9s %s\n", "ID", "CATEGORY", "KIND", "SEVERITY", "TITLE")
	for _, rule := range table {
		fmt.Printf("%-20s %-16s %-9s %-9s %s\n",
			rule.ID, rule.Category, rule.Kind, strings.ToUpper(string(rule.Severity)), rule.Title)
	}
	if disabled := total - len(table); disabled > 0 {
		fmt.Printf("\n%d rule(s) disabled by %s\n", disabled, cfg.Rules.OverridesPath)
	}
	return nil
}
