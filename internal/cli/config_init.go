package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/retrofit/internal/config"
	"github.com/rshade/retrofit/internal/persist"
)

// initOptions are the config init flags.
type initOptions struct {
	force    bool
	global   bool
	print    bool
	tariff   float64
	horizon  int
	discount float64
}

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd() *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the financial defaults",
		Long: `Writes config.yaml with the engine, storage, logging and output defaults.

Inside a retrofit project (a directory tree with retrofit.yaml) the file goes to
$PROJECT/.retrofit/config.yaml, the working project is kept under
$PROJECT/.retrofit/projects and an empty working project is saved there so
"project show" works straight away. Outside a project, or with --global, the
file goes to $RETROFIT_HOME/config.yaml.

--tariff, --horizon and --discount override the engine defaults before writing.
The result is validated first, so an invalid value never reaches disk.`,
		Example: `  # Project configuration with a flat 0.72 yuan/kWh tariff
  retrofit config init --tariff 0.72

  # Global configuration evaluating every module over 15 years at 8%
  retrofit config init --global --horizon 15 --discount 0.08

  # Preview the file without writing it
  retrofit config init --print`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.force, "force", false, "overwrite an existing configuration file")
	cmd.Flags().BoolVar(&opts.global, "global", false, "write the global configuration even inside a project")
	cmd.Flags().BoolVar(&opts.print, "print", false, "print the configuration instead of writing it")
	cmd.Flags().Float64Var(&opts.tariff, "tariff", 0, "default flat tariff in yuan/kWh")
	cmd.Flags().IntVar(&opts.horizon, "horizon", 0, "evaluation horizon in years for every module (0 keeps module defaults)")
	cmd.Flags().Float64Var(&opts.discount, "discount", 0, "project discount rate, e.g. 0.06")

	return cmd
}

func runConfigInit(cmd *cobra.Command, opts initOptions) error {
	cfg := config.New()
	projectDir := config.GetResolvedProjectDir()
	local := projectDir != "" && !opts.global
	if local {
		cfg.SetConfigPath(filepath.Join(projectDir, "config.yaml"))
		cfg.Storage.Directory = filepath.Join(projectDir, "projects")
	}

	flags := cmd.Flags()
	if flags.Changed("tariff") {
		cfg.Engine.DefaultTariff = opts.tariff
	}
	if flags.Changed("horizon") {
		cfg.Engine.HorizonYears = opts.horizon
	}
	if flags.Changed("discount") {
		cfg.Engine.DiscountRate = opts.discount
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if opts.print {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encoding configuration: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if err := checkConfigAbsent(cfg.ConfigPath(), opts.force); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving configuration: %w", err)
	}
	cmd.Printf("Wrote configuration to %s\n", cfg.ConfigPath())

	if !local {
		return nil
	}

	created, err := config.EnsureGitignore(projectDir)
	if err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if created {
		cmd.Printf("Wrote %s so saved projects stay out of version control\n", filepath.Join(projectDir, ".gitignore"))
	}

	seeded, err := seedWorkingProject(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	if seeded {
		cmd.Printf("Saved an empty working project under %s\n", cfg.Storage.Directory)
	}
	return nil
}

// checkConfigAbsent fails if path exists, unless force is set.
func checkConfigAbsent(path string, force bool) error {
	if force {
		return nil
	}
	_, err := os.Stat(path)
	if err == nil {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("cannot access config path %s: %w", path, err)
	}
	return nil
}

// seedWorkingProject saves the default project into cfg's store unless one is
// already there. It reports whether it wrote anything.
func seedWorkingProject(ctx context.Context, cfg *config.Config) (bool, error) {
	store, err := persist.NewFileStore(cfg.Storage.Directory)
	if err != nil {
		return false, fmt.Errorf("opening project store: %w", err)
	}
	repo := persist.NewRepository(store, cfg.Storage.ProjectKey)
	_, err = store.GetItem(ctx, repo.Key())
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, persist.ErrItemNotFound):
		return false, fmt.Errorf("reading working project: %w", err)
	}

	s := defaultStateFunc(cfg)()
	newEngine(cfg).Recompute(ctx, s)
	if err := repo.Save(ctx, s); err != nil {
		return false, err
	}
	return true, nil
}
