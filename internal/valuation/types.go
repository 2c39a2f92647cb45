package valuation

import "fmt"

type Stage string

const (
	StageConcept Stage = "concept"
	StageSeed    Stage = "seed"
	StageSeriesA Stage = "seriesA"
	StageSeriesB Stage = "seriesB"
	StageSeriesC Stage = "seriesC"
)

// Stages lists the funding stages in progression order.
var Stages = []Stage{StageConcept, StageSeed, StageSeriesA, StageSeriesB, StageSeriesC}

// ParseStage rejects unknown stage keys. Callers run it before ComputeValuation,
// which treats an unknown stage as a programmer error.
func ParseStage(raw string) (Stage, error) {
	for _, s := range Stages {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q", raw)
}

type Method string

const (
	MethodBerkus          Method = "berkus"
	MethodRevenueMultiple Method = "revenue_multiple"
)

// Upper bounds callers enforce on ARR ($M) and TAM ($B) so that every
// snapshot field stays finite. Below them the engine clamps silently.
const (
	MaxARR = 1_000_000
	MaxTAM = 1_000_000
)

// Input is the raw form a caller submits. Units follow the calculator UI:
// ARR in millions, TAM in billions, growth/margin/retention in percent.
type Input struct {
	CompanyName     string  `json:"company_name"`
	Stage           Stage   `json:"stage"`
	ARR             float64 `json:"arr"`
	MonthlyGrowth   float64 `json:"monthly_growth"`
	TAM             float64 `json:"tam"`
	GrossMargin     float64 `json:"gross_margin"`
	NetRetention    float64 `json:"net_retention"`
	BurnMultiple    float64 `json:"burn_multiple"`
	TeamStrength    float64 `json:"team_strength"`
	Differentiation float64 `json:"differentiation"`
}

// Lifts are the multiplicative adjustments applied to the stage multiple.
// All five are 1 when the Berkus method produced the valuation.
type Lifts struct {
	Growth      float64 `json:"growth"`
	Margin      float64 `json:"margin"`
	Retention   float64 `json:"retention"`
	Burn        float64 `json:"burn"`
	Qualitative float64 `json:"qualitative"`
}

type Snapshot struct {
	Bear            float64 `json:"bear"`
	Base            float64 `json:"base"`
	Bull            float64 `json:"bull"`
	RevenueMultiple float64 `json:"revenue_multiple"`
	Confidence      float64 `json:"confidence"`
	ForwardARR      float64 `json:"forward_arr"`
	MarketPotential float64 `json:"market_potential"`
	AnnualGrowth    float64 `json:"annual_growth"`
	StageLabel      string  `json:"stage_label"`
	Method          Method  `json:"method"`
	Lifts           Lifts   `json:"lifts"`
}
