package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultConfigDir  = ".solsentry"
	DefaultConfigFile = "config.json"
	DefaultDBFile     = ".solsentry/solsentry.db"

	// DefaultMaxSourceBytes bounds a single contract submission (512 KiB).
	DefaultMaxSourceBytes = 512 * 1024
	// DefaultSemanticTimeout caps one semantic collaborator call.
	DefaultSemanticTimeout = 60 * time.Second
	// DefaultDedupeLineWindow is the aggregator's duplicate line distance.
	DefaultDedupeLineWindow = 3
	// DefaultGatewayPort is the localhost port the audit daemon binds.
	DefaultGatewayPort = 6180
)

// Load reads the config file (creating defaults in memory if absent) and
// returns a populated Config. configPath may override the default location.
func Load(configPath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix("SOLSENTRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(home, DefaultConfigDir))
	}

	setDefaults(v, home)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// No config yet; defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	expandPaths(&cfg, home)
	return &cfg, nil
}

// Save writes the config to disk as JSON.
func Save(cfg *Config, configPath string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("cannot determine home directory: %w", err)
	}

	if configPath == "" {
		configPath = filepath.Join(home, DefaultConfigDir, DefaultConfigFile)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("serialising config: %w", err)
	}

	return os.WriteFile(configPath, data, 0o600)
}

// setDefaults populates viper with sensible out-of-the-box values.
func setDefaults(v *viper.Viper, home string) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", filepath.Join(home, DefaultDBFile))
	v.SetDefault("database.dsn", "")

	v.SetDefault("semantic.provider", "")
	v.SetDefault("semantic.model", "")
	v.SetDefault("semantic.ollama_url", "http://localhost:11434")

	v.SetDefault("engine.max_source_bytes", DefaultMaxSourceBytes)
	v.SetDefault("engine.semantic_timeout", DefaultSemanticTimeout)
	v.SetDefault("engine.dedupe_line_window", DefaultDedupeLineWindow)

	v.SetDefault("gateway.port", DefaultGatewayPort)
	v.SetDefault("gateway.schedule", "")

	v.SetDefault("etherscan.endpoint", "")
	v.SetDefault("rules.overrides_path", "")
}

// expandPaths resolves "~" prefixes left in user-edited config files.
func expandPaths(cfg *Config, home string) {
	if strings.HasPrefix(cfg.Database.Path, "~/") {
		cfg.Database.Path = filepath.Join(home, cfg.Database.Path[2:])
	}
	if strings.HasPrefix(cfg.Rules.OverridesPath, "~/") {
		cfg.Rules.OverridesPath = filepath.Join(home, cfg.Rules.OverridesPath[2:])
	}
}
