package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/retrofit/internal/config"
	"github.com/rshade/retrofit/internal/engine"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the effective configuration",
		Long: `Validates the effective configuration: the global file, the project overlay
and RETROFIT_* environment overrides combined.`,
		Example: `  # Validate current configuration
  retrofit config validate

  # Validate and show the effective values
  retrofit config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			cmd.Printf("Configuration is valid\n")

			if verbose {
				cmd.Printf("Config file:  %s\n", cfg.ConfigPath())
				cmd.Printf("Project dir:  %s\n", config.GetResolvedProjectDir())
				cmd.Printf("Store dir:    %s\n", cfg.Storage.Directory)
				cmd.Printf("Output:       %s\n", cfg.Output.DefaultFormat)
				cmd.Printf("Log level:    %s\n", cfg.Logging.Level)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show the effective configuration")

	return cmd
}

// NewConfigShowCmd creates the config show command.
func NewConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			if outputFormat(cmd) == config.FormatJSON {
				return engine.RenderJSON(cmd.OutOrStdout(), cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
