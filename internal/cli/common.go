package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/retrofit/internal/config"
	"github.com/rshade/retrofit/internal/engine"
	"github.com/rshade/retrofit/internal/logging"
	"github.com/rshade/retrofit/internal/persist"
	"github.com/rshade/retrofit/internal/project"
)

// workspace bundles what commands operating on the working project need.
type workspace struct {
	cfg    *config.Config
	repo   *persist.Repository
	engine *engine.Engine
}

// newEngine builds the engine from the engine config section.
func newEngine(cfg *config.Config) *engine.Engine {
	return engine.New(
		engine.WithHorizon(cfg.Engine.HorizonYears),
		engine.WithDiscountRate(cfg.Engine.DiscountRate),
	)
}

// defaultStateFunc returns the first-run project for cfg.
func defaultStateFunc(cfg *config.Config) func() *project.State {
	return func() *project.State {
		s := persist.DefaultState()
		s.Context.Price.FixedPrice = cfg.Engine.DefaultTariff
		return s
	}
}

// openWorkspace opens the file store configured for the current invocation.
func openWorkspace() (*workspace, error) {
	cfg := config.GetGlobalConfig()
	store, err := persist.NewFileStore(cfg.Storage.Directory)
	if err != nil {
		return nil, fmt.Errorf("opening project store: %w", err)
	}
	repo := persist.NewRepository(store, cfg.Storage.ProjectKey).WithDefaults(defaultStateFunc(cfg))
	return &workspace{cfg: cfg, repo: repo, engine: newEngine(cfg)}, nil
}

// load reads the working project and recomputes it. Load warnings are logged.
func (w *workspace) load(ctx context.Context) (*project.State, *engine.Report, error) {
	s, res, err := w.repo.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	log := logging.FromContext(ctx)
	for _, issue := range res.Warnings {
		log.Debug().Ctx(ctx).Str("path", issue.Path).Msg(issue.Message)
	}
	return s, w.engine.Recompute(ctx, s), nil
}

// save writes s back to the store.
func (w *workspace) save(ctx context.Context, s *project.State) error {
	return w.repo.Save(ctx, s)
}

// parseModuleKey accepts a full key ("retrofit-solar") or its short form ("solar").
func parseModuleKey(arg string) (project.ModuleKey, error) {
	key := project.ModuleKey(strings.ToLower(strings.TrimSpace(arg)))
	if !strings.HasPrefix(string(key), "retrofit-") {
		key = "retrofit-" + key
	}
	if !key.IsKnown() {
		return "", fmt.Errorf("%w: %s", engine.ErrUnknownModule, arg)
	}
	return key, nil
}

// outputFormat resolves "auto" to table on a terminal and JSON otherwise.
func outputFormat(cmd *cobra.Command) string {
	format := config.GetDefaultOutputFormat()
	if format != config.FormatAuto && format != "" {
		return format
	}
	if f, ok := cmd.OutOrStdout().(*os.File); ok && isTerminal(f) {
		return config.FormatTable
	}
	return config.FormatJSON
}

// printIssues writes import findings to stderr.
func printIssues(cmd *cobra.Command, res persist.ImportResult) {
	for _, e := range res.Errors {
		cmd.PrintErrf("ERROR: %s\n", e)
	}
	for _, w := range res.Warnings {
		cmd.PrintErrf("WARNING: %s\n", w)
	}
}
