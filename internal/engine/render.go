package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rshade/retrofit/internal/calc"
	"github.com/rshade/retrofit/internal/greenops"
	"github.com/rshade/retrofit/internal/project"
)

// tabwriterPadding is the minimum padding between table columns.
const tabwriterPadding = 2

// DefaultPrecision is the number of decimals shown for wan amounts when the
// caller has no configured precision.
const DefaultPrecision = 2

func activeMark(active bool) string {
	if active {
		return "✓" // check mark
	}
	return "-"
}

// RenderSummaryTable writes one row per module followed by the project totals.
//
// precision is the number of decimals for currency columns.
func RenderSummaryTable(w io.Writer, s *project.State, rep *Report, precision int) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)

	if _, err := fmt.Fprintf(tw, "MODULE\tACTIVE\tSTRATEGY\tINVESTMENT(wan)\tSAVING(wan/yr)\tPAYBACK\tIRR\tKPI\n"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := fmt.Fprintf(tw, "------\t------\t--------\t---------------\t--------------\t-------\t---\t---\n"); err != nil {
		return fmt.Errorf("writing separator: %w", err)
	}

	for _, key := range project.AllKeys() {
		m, ok := s.Modules[key]
		if !ok {
			continue
		}
		r := rep.Results[key]
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s: %s\n",
			key, activeMark(m.IsActive), m.Strategy,
			greenops.FormatFloat(m.Investment, precision),
			greenops.FormatFloat(m.YearlySaving, precision),
			calc.PaybackString(r.Payback), r.IRR.String(),
			m.KPIPrimary.Label, m.KPIPrimary.Value,
		); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	if err := renderSummaryFooter(tw, s, rep, precision); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return tw.Flush()
}

func renderSummaryFooter(tw *tabwriter.Writer, s *project.State, rep *Report, precision int) error {
	sum := rep.Summary
	if _, err := fmt.Fprintf(tw, "\t\t\t\t\t\t\t\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "TOTAL\t%d active\t%s\t%s\t%s\t%s\t%s\t\n",
		len(sum.ActiveModules), s.BaseInfo.Name,
		greenops.FormatFloat(sum.TotalInvestment, precision),
		greenops.FormatFloat(sum.TotalYearlySaving, precision),
		calc.PaybackString(sum.Payback), sum.IRR.String(),
	); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "\t\tTariff:\t%s yuan/kWh\t\t\t\t\n", greenops.FormatFloat(rep.Price, 4)); err != nil {
		return err
	}
	for _, warn := range sum.Warnings {
		if _, err := fmt.Fprintf(tw, "WARNING\t%s\t%s\t\t\t\t\t\n", warn.Module, warn.Message); err != nil {
			return err
		}
	}
	return nil
}

// RenderModuleTable writes the detailed metrics of one module.
func RenderModuleTable(w io.Writer, m project.Module, r calc.Result, precision int) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)

	rows := [][2]string{
		{"Module", fmt.Sprintf("%s (%s)", m.Name, m.ID)},
		{"Active", activeMark(m.IsActive)},
		{"Strategy", r.Strategy},
		{"Investment", greenops.FormatFloat(r.Investment, precision) + " wan"},
		{"Revenue", greenops.FormatFloat(r.Revenue, precision) + " wan/yr"},
		{"Operating cost", greenops.FormatFloat(r.OperatingCost, precision) + " wan/yr"},
		{"Net saving", greenops.FormatFloat(r.NetSaving, precision) + " wan/yr"},
		{"Payback", calc.PaybackString(r.Payback)},
		{"IRR", r.IRR.String()},
		{"NPV", greenops.FormatFloat(r.NPV, precision) + " wan"},
		{m.KPIPrimary.Label, m.KPIPrimary.Value},
		{m.KPISecondary.Label, m.KPISecondary.Value},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1]); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	if len(r.Metrics) > 0 {
		if _, err := fmt.Fprintf(tw, "\t\nMETRIC\tVALUE\n------\t-----\n"); err != nil {
			return err
		}
		for _, metric := range r.Metrics {
			if _, err := fmt.Fprintf(tw, "%s\t%s %s\n", metric.Name, greenops.FormatFloat(metric.Value, precision), metric.Unit); err != nil {
				return fmt.Errorf("writing metric: %w", err)
			}
		}
	}
	for _, warn := range r.Warnings {
		if _, err := fmt.Fprintf(tw, "WARNING\t%s\n", warn); err != nil {
			return err
		}
	}
	for _, note := range r.Notes {
		if _, err := fmt.Fprintf(tw, "NOTE\t%s\n", note); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// RenderJSON writes v as indented JSON.
func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
