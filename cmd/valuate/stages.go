package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joelkehle/startup-valuation/internal/valuation"
)

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "List funding stages with their valuation bounds and multiples",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STAGE\tLABEL\tTYPICAL\tFLOOR\tCEILING\tMULTIPLES")
		for _, p := range valuation.DefaultProfiles.Ordered() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s-%s\n",
				p.Stage, p.Label, p.TypicalRange,
				valuation.FormatUSD(p.Floor), valuation.FormatUSD(p.Ceiling),
				valuation.FormatMultiple(p.MultipleMin), valuation.FormatMultiple(p.MultipleMax))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(stagesCmd)
}
