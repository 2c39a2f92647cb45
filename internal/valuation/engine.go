package valuation

import "math"

const (
	berkusRevenueCutoff = 100_000
	berkusIdeaCap       = 500_000
	berkusPrototypeCap  = 500_000
	berkusTeamCap       = 500_000
	berkusStrategicCap  = 300_000
	berkusTimingCap     = 200_000
	largeMarketTAM      = 10_000_000_000

	marketPotentialRevenueShare = 0.05
	berkusMarketPotentialShare  = 0.10
	sanityARRMultiple           = 50
)

// Compute values the input against DefaultProfiles.
func Compute(in Input) Snapshot {
	return ComputeValuation(in, DefaultProfiles)
}

// ComputeValuation is a pure function of its arguments. It panics when the
// input stage has no profile.
func ComputeValuation(in Input, profiles StageProfiles) Snapshot {
	profile := profiles.Profile(in.Stage)
	m := normalize(in)

	var snap Snapshot
	if selectMethod(in.Stage, m.arrDollars) == MethodBerkus {
		snap = berkus(m, profile)
	} else {
		snap = revenueMultiple(m, profile)
	}
	snap.StageLabel = profile.Label
	snap.AnnualGrowth = m.annualGrowth

	upside, downside := spreadFactors(m)
	snap.Bull = snap.Base * (1 + upside)
	snap.Bear = snap.Base * (1 - downside)
	snap.Confidence = confidence(m)
	return snap
}

func selectMethod(stage Stage, arrDollars float64) Method {
	if stage == StageConcept || (stage == StageSeed && arrDollars < berkusRevenueCutoff) {
		return MethodBerkus
	}
	return MethodRevenueMultiple
}

func berkus(m metrics, profile StageProfile) Snapshot {
	idea := (m.differentiation / 5) * berkusIdeaCap

	traction := 0.2
	switch {
	case m.arrDollars > 0:
		traction = 0.8
	case m.monthlyGrowth > 0:
		traction = 0.5
	}
	prototype := traction * berkusPrototypeCap

	team := (m.teamStrength / 5) * berkusTeamCap
	strategic := ((m.teamStrength + m.differentiation) / 10) * berkusStrategicCap

	timing := 0.4 * berkusTimingCap
	if m.tamDollars > largeMarketTAM {
		timing = 0.7 * berkusTimingCap
	}

	sum := idea + prototype + team + strategic + timing
	return Snapshot{
		Base:            clamp(sum, profile.Floor, profile.Ceiling),
		RevenueMultiple: 0,
		ForwardARR:      0,
		MarketPotential: sum * berkusMarketPotentialShare,
		Method:          MethodBerkus,
		Lifts:           Lifts{Growth: 1, Margin: 1, Retention: 1, Burn: 1, Qualitative: 1},
	}
}

func revenueMultiple(m metrics, profile StageProfile) Snapshot {
	growthScore := clamp(m.annualGrowth/1.0, 0, 1)
	baseMultiple := profile.MultipleMin + (profile.MultipleMax-profile.MultipleMin)*growthScore

	lifts := Lifts{
		Growth:      baseMultiple / profile.MultipleMin,
		Margin:      marginLift(m.grossMargin),
		Retention:   retentionLift(m.netRetention),
		Burn:        burnLift(m.burnMultiple),
		Qualitative: qualitativeLift(m.teamStrength, m.differentiation),
	}
	multiple := baseMultiple * lifts.Margin * lifts.Retention * lifts.Burn * lifts.Qualitative
	multiple = clamp(multiple, 0.5*profile.MultipleMin, 1.2*profile.MultipleMax)

	revenueValuation := m.arrDollars * multiple
	marketPotential := math.Min(
		m.tamDollars*profile.TAMCaptureRate*lifts.Qualitative,
		revenueValuation*marketPotentialRevenueShare,
	)

	base := clamp(revenueValuation+marketPotential, profile.Floor, profile.Ceiling)
	base = math.Min(base, sanityARRMultiple*m.arrDollars)

	return Snapshot{
		Base:            base,
		RevenueMultiple: multiple,
		ForwardARR:      m.arrDollars * (1 + m.annualGrowth),
		MarketPotential: marketPotential,
		Method:          MethodRevenueMultiple,
		Lifts:           lifts,
	}
}

// Margin, retention and burn use stepped tiers; only growth is interpolated.
func marginLift(margin float64) float64 {
	switch {
	case margin < 60:
		return 0.8
	case margin > 80:
		return 1.1
	default:
		return 1.0
	}
}

func retentionLift(retention float64) float64 {
	switch {
	case retention < 90:
		return 0.85
	case retention > 120:
		return 1.15
	default:
		return 1.0
	}
}

func burnLift(burn float64) float64 {
	switch {
	case burn == 0:
		return 1.2
	case burn < 1:
		return 1.15
	case burn < 1.5:
		return 1.1
	case burn < 2:
		return 1.0
	case burn < 3:
		return 0.9
	default:
		return 0.75
	}
}

// With both scores clamped to [1,5] the lift spans 0.91 to 1.15.
func qualitativeLift(team, differentiation float64) float64 {
	return 0.85 + ((team+differentiation)/10)*0.3
}

func spreadFactors(m metrics) (upside, downside float64) {
	upside = clamp(0.15+m.annualGrowth*0.15+((m.differentiation-3)/5)*0.1, 0.10, 0.40)

	burnPenalty := 0.0
	if m.burnMultiple > 2 {
		burnPenalty = (m.burnMultiple - 2) * 0.08
	}
	downside = clamp(0.15+burnPenalty+((5-m.teamStrength)/5)*0.1, 0.10, 0.35)
	return upside, downside
}

func confidence(m metrics) float64 {
	revenueTier := 0.0
	switch {
	case m.arrDollars > 500_000:
		revenueTier = 0.25
	case m.arrDollars > 0:
		revenueTier = 0.15
	}
	score := 0.30 +
		revenueTier +
		0.15*(m.netRetention/150) +
		0.10*(m.teamStrength/5) +
		0.10*(1-math.Min(m.burnMultiple, 3)/4) +
		0.10*(m.differentiation/5)
	return clamp(score, 0.25, 0.90)
}
