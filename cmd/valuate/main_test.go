package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joelkehle/startup-valuation/internal/valuation"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("valuate %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func writeInput(t *testing.T, in valuation.Input) string {
	t.Helper()
	blob, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal input: %v", err)
	}
	path := filepath.Join(t.TempDir(), "input.json")
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func seriesA() valuation.Input {
	return valuation.Input{
		CompanyName:     "Acme Analytics",
		Stage:           valuation.StageSeriesA,
		ARR:             2,
		MonthlyGrowth:   15,
		TAM:             10,
		GrossMargin:     75,
		NetRetention:    110,
		BurnMultiple:    1,
		TeamStrength:    4,
		Differentiation: 4,
	}
}

func TestStagesCommand(t *testing.T) {
	out := execute(t, "stages")
	for _, want := range []string{"concept", "Series C+", "$100M", "5x-15x"} {
		if !strings.Contains(out, want) {
			t.Fatalf("stages output missing %q:\n%s", want, out)
		}
	}
}

func TestComputeFromFileWithOverride(t *testing.T) {
	path := writeInput(t, seriesA())
	out := execute(t, "compute", "--input", path, "--arr", "4")

	var got struct {
		Input    valuation.Input    `json:"input"`
		Snapshot valuation.Snapshot `json:"snapshot"`
		Insights []string           `json:"insights"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	want := seriesA()
	want.ARR = 4
	if got.Input != want {
		t.Fatalf("input = %+v, want %+v", got.Input, want)
	}
	if got.Snapshot != valuation.Compute(want) {
		t.Fatalf("snapshot = %+v, want %+v", got.Snapshot, valuation.Compute(want))
	}
	if len(got.Insights) == 0 {
		t.Fatal("expected insights")
	}
}

func TestReportMarkdownToFile(t *testing.T) {
	path := writeInput(t, seriesA())
	outPath := filepath.Join(t.TempDir(), "report.md")
	execute(t, "report", "--input", path, "--output", outPath)

	blob, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(blob), "| Base | $62.13M |") {
		t.Fatalf("report missing base row:\n%s", blob)
	}
}

func TestComputeRejectsARRAboveLimit(t *testing.T) {
	path := writeInput(t, seriesA())
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"compute", "--input", path, "--arr", "1e303"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatalf("expected an error for arr above the limit, got output:\n%s", out.String())
	}
	if !strings.Contains(err.Error(), "arr") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestComputeAtARRLimitEncodes(t *testing.T) {
	in := seriesA()
	in.Stage = valuation.StageSeriesB
	in.ARR = valuation.MaxARR
	in.TAM = valuation.MaxTAM
	path := writeInput(t, in)
	out := execute(t, "compute", "--input", path, "--arr", "1000000")
	if !strings.Contains(out, `"forward_arr"`) {
		t.Fatalf("expected encoded snapshot:\n%s", out)
	}
}
