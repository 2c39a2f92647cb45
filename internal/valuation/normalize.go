package valuation

import "math"

// metrics holds the clamped inputs, with ARR and TAM converted to dollars.
type metrics struct {
	arrDollars      float64
	monthlyGrowth   float64
	annualGrowth    float64
	tamDollars      float64
	grossMargin     float64
	netRetention    float64
	burnMultiple    float64
	teamStrength    float64
	differentiation float64
}

func normalize(in Input) metrics {
	arr := math.Max(finite(in.ARR), 0)
	growth := clamp(finite(in.MonthlyGrowth), 0, 50)
	tam := math.Max(finite(in.TAM), 0.1)
	return metrics{
		arrDollars:      arr * 1_000_000,
		monthlyGrowth:   growth,
		annualGrowth:    math.Pow(1+growth/100, 12) - 1,
		tamDollars:      tam * 1_000_000_000,
		grossMargin:     clamp(finite(in.GrossMargin), 20, 95),
		netRetention:    clamp(finite(in.NetRetention), 50, 180),
		burnMultiple:    clamp(finite(in.BurnMultiple), 0, 5),
		teamStrength:    clamp(finite(in.TeamStrength), 1, 5),
		differentiation: clamp(finite(in.Differentiation), 1, 5),
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
