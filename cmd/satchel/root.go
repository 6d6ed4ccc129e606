// Root command for the satchel CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/satchel/internal/logger"
	"github.com/mesh-intelligence/satchel/internal/paths"
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagCatalog   string
	flagJSON      bool
	flagVerbose   bool
)

// cfg holds config.yaml values, loaded by PersistentPreRunE.
var cfg settings

// log is the CLI logger, built by PersistentPreRunE.
var log = logger.Nop()

var rootCmd = &cobra.Command{
	Use:           "satchel",
	Short:         "Satchel keeps a local stash of item stacks",
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return sysError(err)
		}

		v, err := loadConfig(configDir)
		if err != nil {
			return sysError(err)
		}
		if cfg, err = settingsFrom(v); err != nil {
			return userError(fmt.Errorf("config.yaml: %w", err))
		}

		level := cfg.LogLevel
		if flagVerbose {
			level = "debug"
		}
		l, err := logger.New(cfg.LogMode, level)
		if err != nil {
			return userError(fmt.Errorf("config.yaml: %w", err))
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "stash directory (default: $(CWD)/.satchel-db)")
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "catalog YAML file (default: built-in catalog)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(enchantCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(migrateCmd)
}

// resolveDataDir returns the stash directory:
// --data-dir flag > config.yaml data_dir > SATCHEL_DATA_DIR > $(CWD)/.satchel-db.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, cfg.DataDir)
}

// resolveConfigDir returns the configuration directory:
// --config-dir flag > SATCHEL_CONFIG_DIR > platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}
