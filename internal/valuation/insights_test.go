package valuation

import (
	"strings"
	"testing"
)

func TestComputeInsightsConceptHasFourEntries(t *testing.T) {
	in := Input{Stage: StageConcept, TeamStrength: 4, Differentiation: 3, TAM: 5}
	got := ComputeInsights(in, Compute(in))
	if len(got) != 4 {
		t.Fatalf("expected 4 insights, got %d: %v", len(got), got)
	}
	if !strings.Contains(got[0], "Berkus") || !strings.Contains(got[0], "This company") {
		t.Fatalf("unexpected context insight: %q", got[0])
	}
	if !strings.HasPrefix(got[1], "Pre-revenue guidance") {
		t.Fatalf("expected pre-revenue guidance, got %q", got[1])
	}
	if !strings.Contains(got[3], "Seed") {
		t.Fatalf("expected seed advancement note, got %q", got[3])
	}
}

func TestComputeInsightsRevenueStageHasThreeEntries(t *testing.T) {
	in := seriesAInput()
	in.Stage = StageSeriesB
	in.ARR = 20
	got := ComputeInsights(in, Compute(in))
	if len(got) != 3 {
		t.Fatalf("expected 3 insights, got %d: %v", len(got), got)
	}
	if !strings.Contains(got[0], "Acme Analytics") || !strings.Contains(got[0], "Series B") {
		t.Fatalf("unexpected context insight: %q", got[0])
	}
	if !strings.Contains(got[1], "forward ARR") {
		t.Fatalf("expected growth trajectory, got %q", got[1])
	}
}

func TestComputeInsightsSeriesAReadiness(t *testing.T) {
	in := seriesAInput()
	in.NetRetention = 130
	got := ComputeInsights(in, Compute(in))
	if len(got) != 4 || !strings.Contains(got[3], "Series B readiness") {
		t.Fatalf("expected Series B readiness note: %v", got)
	}

	in.NetRetention = 120
	if got := ComputeInsights(in, Compute(in)); len(got) != 3 {
		t.Fatalf("retention of exactly 120%% should not emit readiness: %v", got)
	}
}

func TestComputeInsightsSeedUnderCutoff(t *testing.T) {
	in := seriesAInput()
	in.Stage = StageSeed
	in.ARR = 0.04
	got := ComputeInsights(in, Compute(in))
	if len(got) != 4 || !strings.Contains(got[3], "$100K ARR") {
		t.Fatalf("expected revenue cutoff note: %v", got)
	}
}

func TestEfficiencyInsightPriority(t *testing.T) {
	cases := []struct {
		name      string
		burn      float64
		retention float64
		margin    float64
		want      string
	}{
		{"profitable beats everything", 0, 60, 30, "Profitable"},
		{"high burn beats retention", 2.5, 60, 30, "burn multiple of 2.5x"},
		{"efficient burn beats margin", 0.6, 60, 30, "Efficient burn"},
		{"low retention", 1.2, 80, 30, "net revenue retention of 80%"},
		{"low margin", 1.2, 100, 45, "gross margin of 45%"},
		{"default bear case", 1.2, 100, 70, "bear case"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := seriesAInput()
			in.BurnMultiple = tc.burn
			in.NetRetention = tc.retention
			in.GrossMargin = tc.margin
			got := ComputeInsights(in, Compute(in))
			if !strings.Contains(got[2], tc.want) {
				t.Fatalf("expected %q in %q", tc.want, got[2])
			}
		})
	}
}
