package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/retrofit/internal/config"
	"github.com/rshade/retrofit/internal/engine"
	"github.com/rshade/retrofit/internal/logging"
	"github.com/rshade/retrofit/internal/persist"
)

// NewProjectImportCmd creates the project import command. The import is all or
// nothing: a document with any validation error leaves the working project as it was.
func NewProjectImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the working project with a project document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			ws, err := openWorkspace()
			if err != nil {
				return err
			}
			s, _, err := ws.load(ctx)
			if err != nil {
				return err
			}

			res, err := persist.ImportInto(s, raw)
			printIssues(cmd, res)
			if err != nil {
				return err
			}

			rep := ws.engine.Recompute(ctx, s)
			if err := ws.save(ctx, s); err != nil {
				return err
			}
			logging.FromContext(ctx).Info().
				Ctx(ctx).
				Str("component", "cli").
				Str("operation", "import").
				Str("file", args[0]).
				Int("warnings", len(res.Warnings)).
				Msg("project imported")

			cmd.Printf("Imported %q (%d active modules, %d warnings)\n",
				s.BaseInfo.Name, len(rep.Summary.ActiveModules), len(res.Warnings))
			return nil
		},
	}
}

// NewProjectExportCmd creates the project export command.
func NewProjectExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the working project as a project document",
		Long: `Writes the working project to {name}_config_{YYYY-MM-DD}.json.

--out may name a file, or a directory to place the default file name in.
Use --out - to write to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ws, err := openWorkspace()
			if err != nil {
				return err
			}
			s, _, err := ws.load(ctx)
			if err != nil {
				return err
			}

			now := time.Now()
			data, err := persist.Export(s, now)
			if err != nil {
				return err
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}

			path := exportPath(out, s.BaseInfo.Name, now)
			if err := os.WriteFile(path, data, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			cmd.Printf("Project exported to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output file or directory (default: current directory)")
	return cmd
}

// exportPath resolves --out against the default export file name.
func exportPath(out, name string, now time.Time) string {
	filename := persist.ExportFilename(name, now)
	if out == "" {
		return filename
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, filename)
	}
	return out
}

// NewProjectShowCmd creates the project show command.
func NewProjectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the working project summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := openWorkspace()
			if err != nil {
				return err
			}
			s, rep, err := ws.load(cmd.Context())
			if err != nil {
				return err
			}
			if outputFormat(cmd) == config.FormatJSON {
				return engine.RenderJSON(cmd.OutOrStdout(), rep)
			}
			return engine.RenderSummaryTable(cmd.OutOrStdout(), s, rep, config.GetOutputPrecision())
		},
	}
}

// NewProjectResetCmd creates the project reset command.
func NewProjectResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard the working project and start from defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ws, err := openWorkspace()
			if err != nil {
				return err
			}
			s, err := ws.repo.Reset(ctx)
			if err != nil {
				return err
			}
			ws.engine.Recompute(ctx, s)
			if err := ws.save(ctx, s); err != nil {
				return err
			}
			cmd.Printf("Project reset to defaults\n")
			return nil
		},
	}
}
