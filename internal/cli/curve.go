package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/retrofit/internal/config"
	"github.com/rshade/retrofit/internal/engine"
	"github.com/rshade/retrofit/internal/greenops"
	"github.com/rshade/retrofit/internal/simulate"
)

// NewCurveLoadCmd creates the curve load command.
func NewCurveLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Print the representative 24-hour load curve (kW)",
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
			points := simulate.LoadCurve24(s, rep)
			if outputFormat(cmd) == config.FormatJSON {
				return engine.RenderJSON(cmd.OutOrStdout(), points)
			}
			return renderLoadCurve(cmd.OutOrStdout(), points, config.GetOutputPrecision())
		},
	}
}

// NewCurveMonthlyCmd creates the curve monthly command.
func NewCurveMonthlyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monthly",
		Short: "Print the 12-month energy curve (kWh)",
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
			points := simulate.MonthlyEnergy(s, rep)
			if outputFormat(cmd) == config.FormatJSON {
				return engine.RenderJSON(cmd.OutOrStdout(), points)
			}
			return renderMonthlyCurve(cmd.OutOrStdout(), points, config.GetOutputPrecision())
		},
	}
}

func renderLoadCurve(w io.Writer, points []simulate.HourPoint, precision int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintln(tw, "HOUR\tBASELINE\tSOLAR\tSTORAGE\tRETROFIT\t"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, p := range points {
		if _, err := fmt.Fprintf(tw, "%02d:00\t%s\t%s\t%s\t%s\t\n", p.Hour,
			greenops.FormatFloat(p.BaselineKW, precision),
			greenops.FormatFloat(p.SolarKW, precision),
			greenops.FormatFloat(p.StorageKW, precision),
			greenops.FormatFloat(p.RetrofitKW, precision),
		); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	return tw.Flush()
}

func renderMonthlyCurve(w io.Writer, points []simulate.MonthPoint, precision int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintln(tw, "MONTH\tBASELINE\tSOLAR\tSAVED\t"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, p := range points {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", p.Month,
			greenops.FormatFloat(p.BaselineKWh, precision),
			greenops.FormatFloat(p.SolarKWh, precision),
			greenops.FormatFloat(p.SavedKWh, precision),
		); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	return tw.Flush()
}
