// FILE: asynclog/src/internal/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lconfig "github.com/lixenwraith/config"
)

// Load resolves the configuration from defaults, the optional config
// file and ASYNC_LOGGING_* environment variables, then validates it.
func Load() (*Config, error) {
	return LoadWithArgs(nil)
}

// LoadWithArgs additionally layers CLI arguments on top of all other
// sources. CLI wins over env, env wins over file, file over defaults.
func LoadWithArgs(args []string) (*Config, error) {
	configPath := GetConfigPath()

	cfg, err := lconfig.NewBuilder().
		WithDefaults(Defaults()).
		WithEnvPrefix("ASYNC_LOGGING_").
		WithFile(configPath).
		WithArgs(args).
		WithEnvTransform(customEnvTransform).
		WithSources(
			lconfig.SourceCLI,
			lconfig.SourceEnv,
			lconfig.SourceFile,
			lconfig.SourceDefault,
		).
		Build()

	if err != nil {
		if !strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: failed to load config: %w", ErrConfiguration, err)
		}
	}

	finalConfig := &Config{}
	if err := cfg.Scan(finalConfig); err != nil {
		return nil, fmt.Errorf("%w: failed to scan config: %w", ErrConfiguration, err)
	}

	applyLegacyEnv(finalConfig)

	return finalConfig, finalConfig.Validate()
}

// applyLegacyEnv honors the bare (unprefixed) environment variables that
// existing deployments use for Azure Monitor DCR routing.
func applyLegacyEnv(cfg *Config) {
	if v := os.Getenv("LOGS_DCR_RULE_ID"); v != "" && cfg.Azure.RuleID == "" {
		cfg.Azure.RuleID = v
	}
	if v := os.Getenv("LOGS_DCR_STREAM_NAME"); v != "" && cfg.Azure.StreamName == "" {
		cfg.Azure.StreamName = v
	}
	if v := os.Getenv("DATA_COLLECTION_ENDPOINT"); v != "" && cfg.Azure.Endpoint == "" {
		cfg.Azure.Endpoint = v
	}
}

func customEnvTransform(path string) string {
	env := strings.ReplaceAll(path, ".", "_")
	env = strings.ToUpper(env)
	return "ASYNC_LOGGING_" + env
}

// GetConfigPath resolves the config file location. The file is optional;
// a missing file falls back to defaults plus environment.
func GetConfigPath() string {
	if configFile := os.Getenv("ASYNC_LOGGING_CONFIG_FILE"); configFile != "" {
		if filepath.IsAbs(configFile) {
			return configFile
		}
		if configDir := os.Getenv("ASYNC_LOGGING_CONFIG_DIR"); configDir != "" {
			return filepath.Join(configDir, configFile)
		}
		return configFile
	}

	if configDir := os.Getenv("ASYNC_LOGGING_CONFIG_DIR"); configDir != "" {
		return filepath.Join(configDir, "asynclog.toml")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "asynclog.toml")
	}

	return "asynclog.toml"
}
