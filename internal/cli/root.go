package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/retrofit/internal/config"
	"github.com/rshade/retrofit/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the retrofit CLI.
// It loads configuration, wires up logging and tracing, and registers the
// calc, project, module, curve and config command groups.
func NewRootCmd(ver string) *cobra.Command {
	var (
		logResult  *logging.LogPathResult
		projectDir string
	)

	cmd := &cobra.Command{
		Use:     "retrofit",
		Short:   "Building energy-retrofit financial engine",
		Long:    "Retrofit: model investment, savings, payback and IRR for building energy retrofits",
		Version: ver,
		Example: rootCmdExample,
		// main reports the returned error.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			wd, _ := os.Getwd()
			resolved := config.ResolveProjectDir(cmd.Context(), projectDir, wd)
			config.SetResolvedProjectDir(resolved)

			cfg := config.NewWithProjectDir(cmd.Context(), resolved)
			if cmd.Flags().Changed("output") {
				cfg.Output.DefaultFormat, _ = cmd.Flags().GetString("output")
			}
			if cmd.Flags().Changed("store-dir") {
				cfg.Storage.Directory, _ = cmd.Flags().GetString("store-dir")
			}
			config.SetGlobalConfig(cfg)

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return cleanupLogging(logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().StringP("output", "o", "", "output format: auto, table or json")
	cmd.PersistentFlags().String("store-dir", "", "directory holding the saved working project")
	cmd.PersistentFlags().StringVar(&projectDir, "project-dir", "", "project directory holding .retrofit/config.yaml")

	cmd.AddCommand(NewCalcCmd(), newProjectCmd(), newModuleCmd(), newCurveCmd(), newConfigCmd())
	return cmd
}

const rootCmdExample = `  # Evaluate exported project documents
  retrofit calc plant-a.json plant-b.json

  # Import a project as the working project and show its summary
  retrofit project import plant-a_config_2024-05-01.json
  retrofit project show

  # Activate the storage module and change its parameters
  retrofit module toggle storage --on
  retrofit module set storage --params '{"powerKW": 500, "capacityKWh": 1000}'

  # Print the representative daily load curve as JSON
  retrofit curve load -o json

  # Initialize configuration
  retrofit config init`

// newProjectCmd creates the project command group.
func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "project", Short: "Working project commands"}
	cmd.AddCommand(
		NewProjectImportCmd(), NewProjectExportCmd(),
		NewProjectShowCmd(), NewProjectResetCmd(),
	)
	return cmd
}

// newModuleCmd creates the module command group.
func newModuleCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "module", Short: "Retrofit module commands"}
	cmd.AddCommand(
		NewModuleListCmd(), NewModuleShowCmd(),
		NewModuleToggleCmd(), NewModuleSetCmd(),
	)
	return cmd
}

// newCurveCmd creates the curve command group.
func newCurveCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "curve", Short: "Simulated chart series"}
	cmd.AddCommand(NewCurveLoadCmd(), NewCurveMonthlyCmd())
	return cmd
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigShowCmd(), NewConfigValidateCmd())
	return cmd
}
