package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helioweb/helioweb/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key]",
	Short: "Show configuration values",
	Long: `Show the effective global configuration, after .env and HELIO_*
environment overrides.

Usage:
  helio config              # Show all values
  helio config orcid        # Show one value

Keys:
  data-path   Default repository (HELIO_DATA_PATH)
  log-level   debug, info, warn, error or none (HELIO_LOG_LEVEL)
  log-format  json or text (HELIO_LOG_FORMAT)
  orcid       Default submitter for 'helio associate' (HELIO_ORCID)`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if len(args) == 0 {
		values := make(map[string]string, len(config.Keys()))
		for _, key := range config.Keys() {
			values[key], _ = cfg.Get(key)
		}
		if humanOutput {
			fmt.Printf("config file: %s\n", config.GlobalConfigPath())
			for _, key := range config.Keys() {
				fmt.Printf("%-11s %s\n", normalizeKey(key)+":", values[key])
			}
		} else {
			outputJSON(values)
		}
		return nil
	}

	key := strings.ReplaceAll(args[0], "-", "_")
	value, ok := cfg.Get(key)
	if !ok {
		exitWithError(ExitError, "unknown config key: %s (valid: %s)", args[0], strings.Join(config.Keys(), ", "))
	}
	if humanOutput {
		fmt.Println(value)
	} else {
		outputJSON(map[string]string{key: value})
	}
	return nil
}

// normalizeKey converts data_path style keys to data-path.
func normalizeKey(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}
