package semantic

import (
	"strings"
	"text/template"

	"github.com/solsentry/solsentry/models"
)

// Options carries the audit options forwarded to the collaborator.
type Options struct {
	Chain        string
	AnalysisMode string
}

// expectedSchema is the JSON shape the collaborator is asked to return.
// The normaliser tolerates deviations from it; this is guidance, not a contract.
const expectedSchema = `{
  "vulnerabilities": [
    {
      "category": "reentrancy|access-control|arithmetic|logic|gas|other",
      "severity": "critical|high|medium|low",
      "description": "what is wrong and why it matters",
      "line": 42,
      "function": "withdraw",
      "confidence": 0.9
    }
  ],
  "security_score": 0,
  "quality_score": 0,
  "gas_score": 0,
  "summary": "overall assessment in 2-3 sentences",
  "recommendations": ["actionable improvement 1", "actionable improvement 2"]
}`

var promptTmpl = template.Must(template.New("audit").Parse(`You are an expert Solidity security auditor.

Target contract ({{.Chain}} chain, {{.Mode}} analysis):
{{.Structure}}

Contract source:
` + "```solidity\n{{.Source}}\n```" + `

Analyse the contract for security vulnerabilities, code-quality issues, and
gas inefficiencies. Score quality and gas from 0 (worst) to 100 (best).

Return ONLY a JSON object matching this shape, with no markdown fences and
no commentary:

{{.Schema}}`))

// BuildPrompt renders the audit prompt for one source unit.
func BuildPrompt(source string, unit *models.SourceUnit, opts Options) string {
	chain := opts.Chain
	if chain == "" {
		chain = "ethereum"
	}
	mode := opts.AnalysisMode
	if mode == "" {
		mode = "standard"
	}

	var b strings.Builder
	err := promptTmpl.Execute(&b, map[string]string{
		"Chain":     chain,
		"Mode":      mode,
		"Structure": unit.Summary(),
		"Source":    source,
		"Schema":    expectedSchema,
	})
	if err != nil {
		// The template is static; execution over strings cannot fail in
		// practice, but degrade to the bare source rather than panic.
		return source
	}
	return b.String()
}
