package rules

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/solsentry/solsentry/models"
)

// Override adjusts one builtin rule from the user's overrides file.
type Override struct {
	// Enabled disables the rule when explicitly false.
	Enabled *bool `yaml:"enabled"`
	// Severity replaces the rule's reported severity when set.
	Severity string `yaml:"severity"`
}

// LoadOverrides reads a YAML map of rule ID → override. A missing path is
// not an error: the builtin table applies unchanged.
func LoadOverrides(path string) (map[string]Override, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading rule overrides: %w", err)
	}
	var overrides map[string]Override
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing rule overrides: %w", err)
	}
	return overrides, nil
}

// Apply returns the rule table with overrides applied: disabled rules are
// dropped, severity overrides rewrite every finding the rule emits.
func Apply(table []Rule, overrides map[string]Override) []Rule {
	if len(overrides) == 0 {
		return table
	}
	out := make([]Rule, 0, len(table))
	for _, rule := range table {
		ov, ok := overrides[rule.ID]
		if !ok {
			out = append(out, rule)
			continue
		}
		if ov.Enabled != nil && !*ov.Enabled {
			continue
		}
		if ov.Severity != "" {
			sev := models.MapSeverity(ov.Severity)
			rule.Severity = sev
			inner := rule.Check
			rule.Check = func(lc LineContext) (models.Finding, bool) {
				f, ok := inner(lc)
				if ok {
					f.Severity = sev
				}
				return f, ok
			}
		}
		out = append(out, rule)
	}
	return out
}
