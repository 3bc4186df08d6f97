package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/retrofit/internal/config"
	"github.com/rshade/retrofit/internal/engine"
	"github.com/rshade/retrofit/internal/logging"
	"github.com/rshade/retrofit/internal/persist"
	"github.com/rshade/retrofit/internal/project"
)

// calcOutcome is the evaluation of one project document.
type calcOutcome struct {
	File    string               `json:"file"`
	State   *project.State       `json:"-"`
	Report  *engine.Report       `json:"report,omitempty"`
	Import  persist.ImportResult `json:"import"`
	Failure string               `json:"error,omitempty"`
}

// NewCalcCmd creates the calc command, which evaluates project documents
// without touching the working project.
func NewCalcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calc <project.json>...",
		Short: "Evaluate one or more exported project documents",
		Long: `Validates and recomputes each project document and prints its summary.

Documents are evaluated concurrently. A rejected document is reported with its
validation errors and does not stop the others; the command fails if any was rejected.`,
		Example: `  # Evaluate a single project
  retrofit calc plant-a.json

  # Compare several projects as JSON
  retrofit calc plant-a.json plant-b.json -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := newEngine(config.GetGlobalConfig())
			outcomes := evaluateFiles(cmd.Context(), eng, args)
			return renderOutcomes(cmd, outcomes)
		},
	}
}

// evaluateFiles imports and recomputes every file concurrently, keeping input order.
func evaluateFiles(ctx context.Context, eng *engine.Engine, files []string) []calcOutcome {
	outcomes := make([]calcOutcome, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, file := range files {
		g.Go(func() error {
			outcomes[i] = evaluateFile(gCtx, eng, file)
			// A failed document never cancels the others.
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func evaluateFile(ctx context.Context, eng *engine.Engine, file string) calcOutcome {
	log := logging.FromContext(ctx)
	out := calcOutcome{File: file}

	raw, err := os.ReadFile(file)
	if err != nil {
		out.Failure = fmt.Sprintf("reading %s: %v", file, err)
		return out
	}

	s, res := persist.Import(raw)
	out.Import = res
	if err := res.Err(); err != nil {
		log.Warn().Ctx(ctx).Str("file", file).Err(err).Msg("project document rejected")
		out.Failure = err.Error()
		return out
	}

	out.State = s
	out.Report = eng.Recompute(ctx, s)
	return out
}

func renderOutcomes(cmd *cobra.Command, outcomes []calcOutcome) error {
	failed := 0
	for _, o := range outcomes {
		if o.Failure != "" {
			failed++
		}
	}

	if outputFormat(cmd) == config.FormatJSON {
		if err := engine.RenderJSON(cmd.OutOrStdout(), outcomes); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for i, o := range outcomes {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "== %s ==\n", o.File)
			printIssues(cmd, o.Import)
			if o.Failure != "" {
				if o.Import.OK() {
					cmd.PrintErrf("ERROR: %s\n", o.Failure)
				}
				continue
			}
			if err := engine.RenderSummaryTable(cmd.OutOrStdout(), o.State, o.Report, config.GetOutputPrecision()); err != nil {
				return err
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d project documents could not be evaluated", failed, len(outcomes))
	}
	return nil
}
