package config

import "time"

// Config is the root configuration structure for solsentry.
// Serialised to ~/.solsentry/config.json.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"  json:"database"`
	Semantic  SemanticConfig  `mapstructure:"semantic"  json:"semantic"`
	Engine    EngineConfig    `mapstructure:"engine"    json:"engine"`
	Gateway   GatewayConfig   `mapstructure:"gateway"   json:"gateway"`
	Etherscan EtherscanConfig `mapstructure:"etherscan" json:"etherscan"`
	Rules     RulesConfig     `mapstructure:"rules"     json:"rules"`
}

// DatabaseConfig controls the audit-history storage backend.
type DatabaseConfig struct {
	// Driver is "sqlite" (default), "mysql" or "postgres".
	Driver string `mapstructure:"driver" json:"driver"`
	// Path is the SQLite file path (expanded at runtime).
	Path string `mapstructure:"path"   json:"path"`
	// DSN is the MySQL/Postgres data source name.
	DSN string `mapstructure:"dsn"    json:"dsn"`
}

// SemanticConfig controls the semantic-analysis collaborator.
type SemanticConfig struct {
	// Provider is "openai", "anthropic", "ollama" or "" (disabled).
	Provider     string `mapstructure:"provider"          json:"provider"`
	OpenAIKey    string `mapstructure:"openai_api_key"    json:"openai_api_key"`
	AnthropicKey string `mapstructure:"anthropic_api_key" json:"anthropic_api_key"`
	Model        string `mapstructure:"model"             json:"model"`
	// BaseURL overrides the API endpoint (proxies, Azure OpenAI).
	BaseURL string `mapstructure:"base_url"   json:"base_url"`
	// OllamaURL is used when Provider == "ollama".
	OllamaURL string `mapstructure:"ollama_url" json:"ollama_url"`
	// Fallback lists providers tried in order when the primary fails.
	Fallback []string `mapstructure:"fallback" json:"fallback"`
}

// EngineConfig bounds a single audit run.
type EngineConfig struct {
	// MaxSourceBytes rejects larger inputs before any processing.
	MaxSourceBytes int `mapstructure:"max_source_bytes" json:"max_source_bytes"`
	// SemanticTimeout caps the semantic collaborator call. The static
	// checker is never blocked by it.
	SemanticTimeout time.Duration `mapstructure:"semantic_timeout" json:"semantic_timeout"`
	// DedupeLineWindow is the line distance within which two findings of
	// the same kind and category are considered duplicates.
	DedupeLineWindow int `mapstructure:"dedupe_line_window" json:"dedupe_line_window"`
}

// GatewayConfig controls the audit REST daemon.
type GatewayConfig struct {
	// Port is the localhost HTTP port the gateway listens on (default: 6180).
	Port int `mapstructure:"port" json:"port"`
	// Watchlist entries are re-audited on Schedule. Each entry is a local
	// path, a git URL, or a contract address.
	Watchlist []string `mapstructure:"watchlist" json:"watchlist"`
	// Schedule is a cron expression; empty disables scheduled re-audits.
	Schedule string `mapstructure:"schedule" json:"schedule"`
}

// EtherscanConfig controls verified-source fetching for on-chain targets.
type EtherscanConfig struct {
	APIKey string `mapstructure:"api_key"  json:"api_key"`
	// Endpoint overrides the default API base (e.g. a chain-specific host).
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
}

// RulesConfig points at the optional static-rule overrides file.
type RulesConfig struct {
	// OverridesPath is a YAML file disabling rules or overriding severities.
	OverridesPath string `mapstructure:"overrides_path" json:"overrides_path"`
}
