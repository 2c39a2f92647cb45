package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joelkehle/startup-valuation/internal/valuation"
)

var (
	inputPath string
	formInput valuation.Input
	stageFlag string
)

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute a valuation snapshot and insights as JSON",
	Args:  cobra.NoArgs,
	RunE:  runCompute,
}

func init() {
	rootCmd.AddCommand(computeCmd)
	addInputFlags(computeCmd)
}

// addInputFlags registers the calculator fields. --input loads a JSON file
// and any explicitly set flag overrides the matching field.
func addInputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&inputPath, "input", "", "Path to a JSON input file (- for stdin)")
	f.StringVar(&formInput.CompanyName, "company", "", "Company name")
	f.StringVar(&stageFlag, "stage", string(valuation.StageSeed), "Funding stage: concept, seed, seriesA, seriesB, seriesC")
	f.Float64Var(&formInput.ARR, "arr", 0, "Annual recurring revenue in $M")
	f.Float64Var(&formInput.MonthlyGrowth, "growth", 10, "Month-over-month growth in percent")
	f.Float64Var(&formInput.TAM, "tam", 5, "Total addressable market in $B")
	f.Float64Var(&formInput.GrossMargin, "margin", 70, "Gross margin in percent")
	f.Float64Var(&formInput.NetRetention, "retention", 100, "Net revenue retention in percent")
	f.Float64Var(&formInput.BurnMultiple, "burn", 1.5, "Burn multiple")
	f.Float64Var(&formInput.TeamStrength, "team", 3, "Team strength, 1 to 5")
	f.Float64Var(&formInput.Differentiation, "differentiation", 3, "Product differentiation, 1 to 5")
}

func resolveInput(cmd *cobra.Command, stdin io.Reader) (valuation.Input, error) {
	in := formInput
	in.Stage = valuation.Stage(stageFlag)
	if inputPath != "" {
		var (
			blob []byte
			err  error
		)
		if inputPath == "-" {
			blob, err = io.ReadAll(stdin)
		} else {
			blob, err = os.ReadFile(inputPath)
		}
		if err != nil {
			return valuation.Input{}, fmt.Errorf("read input: %w", err)
		}
		var fromFile valuation.Input
		if err := json.Unmarshal(blob, &fromFile); err != nil {
			return valuation.Input{}, fmt.Errorf("decode input JSON: %w", err)
		}
		in = overrideChanged(cmd, fromFile, in)
	}
	stage, err := valuation.ParseStage(string(in.Stage))
	if err != nil {
		return valuation.Input{}, err
	}
	in.Stage = stage
	if in.ARR > valuation.MaxARR {
		return valuation.Input{}, fmt.Errorf("arr %g exceeds the %d ($M) limit", in.ARR, valuation.MaxARR)
	}
	if in.TAM > valuation.MaxTAM {
		return valuation.Input{}, fmt.Errorf("tam %g exceeds the %d ($B) limit", in.TAM, valuation.MaxTAM)
	}
	return in, nil
}

func overrideChanged(cmd *cobra.Command, base, flags valuation.Input) valuation.Input {
	changed := cmd.Flags().Changed
	if changed("company") {
		base.CompanyName = flags.CompanyName
	}
	if changed("stage") {
		base.Stage = flags.Stage
	}
	if changed("arr") {
		base.ARR = flags.ARR
	}
	if changed("growth") {
		base.MonthlyGrowth = flags.MonthlyGrowth
	}
	if changed("tam") {
		base.TAM = flags.TAM
	}
	if changed("margin") {
		base.GrossMargin = flags.GrossMargin
	}
	if changed("retention") {
		base.NetRetention = flags.NetRetention
	}
	if changed("burn") {
		base.BurnMultiple = flags.BurnMultiple
	}
	if changed("team") {
		base.TeamStrength = flags.TeamStrength
	}
	if changed("differentiation") {
		base.Differentiation = flags.Differentiation
	}
	return base
}

func runCompute(cmd *cobra.Command, _ []string) error {
	in, err := resolveInput(cmd, cmd.InOrStdin())
	if err != nil {
		return err
	}
	snap := valuation.Compute(in)
	out := map[string]any{
		"input":    in,
		"snapshot": snap,
		"insights": valuation.ComputeInsights(in, snap),
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
