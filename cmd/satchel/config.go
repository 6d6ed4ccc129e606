// Config loading for the satchel CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend      = "backend"
	cfgKeyDataDir      = "data_dir"
	cfgKeyCatalog      = "catalog"
	cfgKeyLogLevel     = "log_level"
	cfgKeyLogMode      = "log_mode"
	cfgKeyStrictDecode = "strict_decode"
	cfgKeySyncStrategy = "sync_strategy"

	envLogLevel = "SATCHEL_LOG_LEVEL"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# satchel configuration

# Stash backend
backend: sqlite

# Stash directory (optional; overridable by --data-dir)
# data_dir:

# Catalog file (optional; the built-in catalog is used when unset)
# catalog:

# JSONL sync strategy: immediate, on_close or batch
sync_strategy: immediate

# Reject records whose type is not in the catalog
strict_decode: false

# Logging: debug, info, warn or error; mode dev or prod
log_level: warn
log_mode: dev
`

// settings is the decoded config.yaml.
type settings struct {
	Backend      string `mapstructure:"backend"`
	DataDir      string `mapstructure:"data_dir"`
	Catalog      string `mapstructure:"catalog"`
	LogLevel     string `mapstructure:"log_level"`
	LogMode      string `mapstructure:"log_mode"`
	StrictDecode bool   `mapstructure:"strict_decode"`
	SyncStrategy string `mapstructure:"sync_strategy"`
}

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run. A config.yaml that
// disappears between the two steps is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeySyncStrategy, types.SyncImmediate)
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetDefault(cfgKeyLogMode, "dev")
	v.SetDefault(cfgKeyStrictDecode, false)
	if err := v.BindEnv(cfgKeyLogLevel, envLogLevel); err != nil {
		return nil, err
	}
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// settingsFrom decodes and validates the loaded configuration.
func settingsFrom(v *viper.Viper) (settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, err
	}
	if err := s.storeConfig("").Validate(); err != nil {
		return settings{}, err
	}
	return s, nil
}

// storeConfig builds the stash configuration for dataDir.
func (s settings) storeConfig(dataDir string) types.Config {
	return types.Config{
		Backend: s.Backend,
		DataDir: dataDir,
		SQLiteConfig: &types.SQLiteConfig{
			SyncStrategy: s.SyncStrategy,
		},
	}
}

func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if none exists.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
