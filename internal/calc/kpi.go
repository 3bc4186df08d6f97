package calc

import (
	"fmt"

	"github.com/rshade/retrofit/internal/finance"
	"github.com/rshade/retrofit/internal/greenops"
	"github.com/rshade/retrofit/internal/project"
)

func wanKPI(label string, v float64) project.KPI {
	return project.KPI{Label: label, Value: greenops.FormatFloat(v, 2) + " wan"}
}

func energyKPI(label string, kWh float64) project.KPI {
	return project.KPI{Label: label, Value: greenops.FormatFloat(kWh, 0) + " kWh"}
}

func powerKPI(label string, kW float64) project.KPI {
	return project.KPI{Label: label, Value: greenops.FormatFloat(kW, 1) + " kW"}
}

func irrKPI(r finance.Rate) project.KPI {
	return project.KPI{Label: "IRR", Value: r.String()}
}

// PaybackString renders a payback period, mapping the sentinel to "not recoverable".
func PaybackString(years float64) string {
	if years == finance.PaybackNotRecoverable {
		return "not recoverable"
	}
	return fmt.Sprintf("%.1f yrs", years)
}

func paybackKPI(years float64) project.KPI {
	return project.KPI{Label: "Payback", Value: PaybackString(years)}
}
