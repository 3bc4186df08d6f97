package finance

import (
	"math"

	"github.com/rshade/retrofit/internal/units"
)

// PaybackNotRecoverable is the payback reported when the net annual return is not
// positive. Payback values are never negative or infinite.
const PaybackNotRecoverable = 0.0

// CashFlowSeries builds N+1 flows: -investment at index 0, then annual for years 1..N.
func CashFlowSeries(investment, annual float64, years int) []float64 {
	if years < 0 {
		years = 0
	}
	flows := make([]float64, years+1)
	flows[0] = -units.Finite(investment)
	for t := 1; t <= years; t++ {
		flows[t] = units.Finite(annual)
	}
	return flows
}

// CashFlowSeriesFromAnnual builds -investment followed by the given yearly amounts.
func CashFlowSeriesFromAnnual(investment float64, annual []float64) []float64 {
	flows := make([]float64, 0, len(annual)+1)
	flows = append(flows, -units.Finite(investment))
	for _, a := range annual {
		flows = append(flows, units.Finite(a))
	}
	return flows
}

// Cumulative returns the running sum of flows.
func Cumulative(flows []float64) []float64 {
	out := make([]float64, len(flows))
	sum := 0.0
	for i, cf := range flows {
		sum += cf
		out[i] = sum
	}
	return out
}

// PaybackIndex returns the first index at which the cumulative sum reaches zero,
// or -1 when the investment is never recovered.
func PaybackIndex(flows []float64) int {
	for i, c := range Cumulative(flows) {
		if c >= 0 {
			return i
		}
	}
	return -1
}

// SimplePayback is investment / netAnnualReturn in years. It returns
// PaybackNotRecoverable when the return is not positive.
func SimplePayback(investment, netAnnualReturn float64) float64 {
	if netAnnualReturn <= 0 || math.IsNaN(netAnnualReturn) {
		return PaybackNotRecoverable
	}
	p := investment / netAnnualReturn
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return PaybackNotRecoverable
	}
	return p
}

// SumSeries adds series element-wise, padding shorter series with zeros.
func SumSeries(series ...[]float64) []float64 {
	n := 0
	for _, s := range series {
		n = max(n, len(s))
	}
	out := make([]float64, n)
	for _, s := range series {
		for i, v := range s {
			out[i] += v
		}
	}
	return out
}

// SafeDiv returns a/b, or 0 when b is 0 or the quotient is not finite.
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return units.Finite(a / b)
}
