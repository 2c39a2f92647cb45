package valuation

type StageProfile struct {
	Stage          Stage   `json:"stage"`
	Label          string  `json:"label"`
	TypicalRange   string  `json:"typical_range"`
	Floor          float64 `json:"floor"`
	Ceiling        float64 `json:"ceiling"`
	MultipleMin    float64 `json:"multiple_min"`
	MultipleMax    float64 `json:"multiple_max"`
	TAMCaptureRate float64 `json:"tam_capture_rate"`
}

type StageProfiles map[Stage]StageProfile

var DefaultProfiles = StageProfiles{
	StageConcept: {
		Stage:          StageConcept,
		Label:          "Concept / Pre-Seed",
		TypicalRange:   "$250K - $2.5M",
		Floor:          250_000,
		Ceiling:        2_500_000,
		MultipleMin:    5,
		MultipleMax:    15,
		TAMCaptureRate: 0.0002,
	},
	StageSeed: {
		Stage:          StageSeed,
		Label:          "Seed",
		TypicalRange:   "$1M - $15M",
		Floor:          1_000_000,
		Ceiling:        15_000_000,
		MultipleMin:    8,
		MultipleMax:    20,
		TAMCaptureRate: 0.0002,
	},
	StageSeriesA: {
		Stage:          StageSeriesA,
		Label:          "Series A",
		TypicalRange:   "$10M - $80M",
		Floor:          10_000_000,
		Ceiling:        80_000_000,
		MultipleMin:    10,
		MultipleMax:    25,
		TAMCaptureRate: 0.0002,
	},
	StageSeriesB: {
		Stage:          StageSeriesB,
		Label:          "Series B",
		TypicalRange:   "$40M - $300M",
		Floor:          40_000_000,
		Ceiling:        300_000_000,
		MultipleMin:    8,
		MultipleMax:    20,
		TAMCaptureRate: 0.0005,
	},
	StageSeriesC: {
		Stage:          StageSeriesC,
		Label:          "Series C+",
		TypicalRange:   "$100M - $1B",
		Floor:          100_000_000,
		Ceiling:        1_000_000_000,
		MultipleMin:    6,
		MultipleMax:    15,
		TAMCaptureRate: 0.001,
	},
}

// Profile panics on an unknown stage; ParseStage is the caller-side guard.
func (p StageProfiles) Profile(stage Stage) StageProfile {
	profile, ok := p[stage]
	if !ok {
		panic("valuation: no profile for stage " + string(stage))
	}
	return profile
}

// Ordered returns the profiles in stage progression order.
func (p StageProfiles) Ordered() []StageProfile {
	out := make([]StageProfile, 0, len(p))
	for _, s := range Stages {
		if profile, ok := p[s]; ok {
			out = append(out, profile)
		}
	}
	return out
}
