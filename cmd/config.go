package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/zpam/hamspam/pkg/config"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  `Generate, validate and inspect hamspam configuration files`,
}

var configGenCmd = &cobra.Command{
	Use:   "generate [config-file]",
	Short: "Generate default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := "hamspam.yaml"
		if len(args) > 0 {
			configPath = args[0]
		}

		if _, err := os.Stat(configPath); err == nil {
			overwrite, _ := cmd.Flags().GetBool("force")
			if !overwrite {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
			}
		}

		if err := config.DefaultConfig().SaveConfig(configPath); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("✅ Configuration file generated: %s\n", configPath)
		fmt.Printf("🚀 Use 'hamspam serve --config %s' to use the configuration\n", configPath)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(args[0])
		if err != nil {
			return fmt.Errorf("❌ Configuration validation failed: %w", err)
		}

		fmt.Printf("✅ Configuration is valid: %s\n", args[0])

		if warnings := configWarnings(cfg); len(warnings) > 0 {
			fmt.Printf("\n⚠️  Warnings:\n")
			for _, w := range warnings {
				fmt.Printf("  - %s\n", w)
			}
		}

		fmt.Printf("\n📊 Configuration Summary:\n")
		fmt.Printf("  HTTP address: %s\n", cfg.Server.Address)
		fmt.Printf("  Language: %s\n", cfg.Model.Language)
		fmt.Printf("  Result cache: %v\n", cfg.Cache.Enabled)
		fmt.Printf("  Milter: %v", cfg.Milter.Enabled)
		if cfg.Milter.Enabled {
			fmt.Printf(" (%s %s)", cfg.Milter.Network, cfg.Milter.Address)
		}
		fmt.Printf("\n")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show [config-file]",
	Short: "Print the effective configuration",
	Long:  `Print the configuration after applying defaults and HAMSPAM_* environment overrides`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile
		if len(args) > 0 {
			path = args[0]
		}

		cfg, err := config.LoadConfig(path)
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

// configWarnings flags settings that are valid but probably unintended
func configWarnings(cfg *config.Config) []string {
	var warnings []string

	if cfg.Model.MaxBatchSize == 0 {
		warnings = append(warnings, "model.max_batch_size is 0, train_bulk batches are unbounded")
	}
	if cfg.Milter.Enabled && cfg.Milter.RejectSpam && cfg.Milter.RejectMessage == "" {
		warnings = append(warnings, "milter.reject_spam is set without reject_message, the default reason is used")
	}
	if cfg.Milter.Enabled && cfg.Milter.HeaderPrefix == "" {
		warnings = append(warnings, "milter.header_prefix is empty, result headers are unprefixed")
	}
	if cfg.Cache.Enabled && cfg.CacheTTL() > 24*time.Hour {
		warnings = append(warnings, "cache.ttl exceeds 24h")
	}

	return warnings
}

func init() {
	configGenCmd.Flags().Bool("force", false, "Overwrite existing config file")

	configCmd.AddCommand(configGenCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
}
