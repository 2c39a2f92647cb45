package valuation

import "testing"

func FuzzComputeValuationInvariants(f *testing.F) {
	f.Add(uint8(0), 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0)
	f.Add(uint8(2), 2.0, 15.0, 10.0, 75.0, 110.0, 1.0, 4.0, 4.0)
	f.Add(uint8(4), 900.0, 60.0, 0.01, 99.0, 200.0, -1.0, 9.0, -3.0)
	f.Add(uint8(1), 0.09, 3.0, 40.0, 10.0, 40.0, 7.0, 0.0, 6.0)

	f.Fuzz(func(t *testing.T, stageIdx uint8, arr, growth, tam, margin, retention, burn, team, diffScore float64) {
		in := Input{
			Stage:           Stages[int(stageIdx)%len(Stages)],
			ARR:             arr,
			MonthlyGrowth:   growth,
			TAM:             tam,
			GrossMargin:     margin,
			NetRetention:    retention,
			BurnMultiple:    burn,
			TeamStrength:    team,
			Differentiation: diffScore,
		}
		snap := Compute(in)
		if !(snap.Bear <= snap.Base && snap.Base <= snap.Bull) {
			t.Fatalf("scenario ordering violated: %+v", snap)
		}
		if snap.Confidence < 0.25 || snap.Confidence > 0.90 {
			t.Fatalf("confidence out of range: %f", snap.Confidence)
		}
		if in.Stage == StageConcept && (snap.RevenueMultiple != 0 || snap.ForwardARR != 0) {
			t.Fatalf("concept must report zero multiple and forward ARR: %+v", snap)
		}
		if again := Compute(in); again != snap {
			t.Fatalf("non-deterministic output: %+v vs %+v", snap, again)
		}
		if n := len(ComputeInsights(in, snap)); n < 3 || n > 4 {
			t.Fatalf("unexpected insight count %d", n)
		}
	})
}
