package valuation

import (
	"fmt"
	"strings"
)

// ComputeInsights explains a snapshot in at most four sentences: method
// context, growth trajectory, one efficiency or risk observation, and an
// optional stage-advancement note.
func ComputeInsights(in Input, snap Snapshot) []string {
	m := normalize(in)
	name := strings.TrimSpace(in.CompanyName)
	if name == "" {
		name = "This company"
	}

	out := make([]string, 0, 4)
	out = append(out, contextInsight(name, snap))
	out = append(out, growthInsight(m, snap))
	out = append(out, efficiencyInsight(m, snap))
	if s, ok := advancementInsight(in.Stage, m); ok {
		out = append(out, s)
	}
	return out
}

func contextInsight(name string, snap Snapshot) string {
	if snap.Method == MethodBerkus {
		return fmt.Sprintf("%s is valued with the Berkus Method for %s companies, scoring idea, prototype, team, strategic relationships and market timing, for a base case of %s.",
			name, snap.StageLabel, FormatUSD(snap.Base))
	}
	return fmt.Sprintf("%s is valued at %s ARR using %s revenue multiples, for a base case of %s.",
		name, FormatMultiple(snap.RevenueMultiple), snap.StageLabel, FormatUSD(snap.Base))
}

func growthInsight(m metrics, snap Snapshot) string {
	if snap.Method == MethodBerkus {
		if m.monthlyGrowth > 0 {
			return fmt.Sprintf("Pre-revenue guidance: %.0f%% monthly growth is an early traction signal; converting it into recurring revenue moves the valuation onto revenue multiples.",
				m.monthlyGrowth)
		}
		return "Pre-revenue guidance: the valuation rests on qualitative factors, so a working prototype and first paying customers are the fastest ways to raise it."
	}
	return fmt.Sprintf("Monthly growth of %.1f%% compounds to %s annually, projecting forward ARR of %s.",
		m.monthlyGrowth, FormatPercent(m.annualGrowth), FormatUSD(snap.ForwardARR))
}

// efficiencyInsight picks the first matching observation in priority order.
func efficiencyInsight(m metrics, snap Snapshot) string {
	switch {
	case m.burnMultiple == 0:
		return "Profitable operations remove financing risk and earn the strongest efficiency premium."
	case m.burnMultiple > 2:
		return fmt.Sprintf("Warning: a burn multiple of %.1fx means each dollar of new ARR costs more than $2 in burn, widening the bear case.",
			m.burnMultiple)
	case m.burnMultiple < 1:
		return fmt.Sprintf("Efficient burn: a %.1fx burn multiple shows new ARR is being added for less than it costs.",
			m.burnMultiple)
	case m.netRetention < 90:
		return fmt.Sprintf("Warning: net revenue retention of %.0f%% signals churn that investors will discount.",
			m.netRetention)
	case m.grossMargin < 60:
		return fmt.Sprintf("Warning: gross margin of %.0f%% is below software benchmarks and compresses the multiple.",
			m.grossMargin)
	default:
		return fmt.Sprintf("The bear case of %s reflects burn efficiency and execution risk; the bull case reaches %s.",
			FormatUSD(snap.Bear), FormatUSD(snap.Bull))
	}
}

func advancementInsight(stage Stage, m metrics) (string, bool) {
	switch {
	case stage == StageConcept:
		return "To reach Seed, focus on a working prototype, early design partners and a clear view of the first customer segment.", true
	case stage == StageSeed && m.arrDollars < berkusRevenueCutoff:
		return fmt.Sprintf("Crossing %s ARR switches this valuation from qualitative scoring to revenue multiples.",
			FormatUSD(berkusRevenueCutoff)), true
	case stage == StageSeriesA && m.netRetention > 120:
		return fmt.Sprintf("Net revenue retention of %.0f%% is a strong Series B readiness signal.", m.netRetention), true
	}
	return "", false
}
