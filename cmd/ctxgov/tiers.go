package main

import (
	"github.com/spf13/cobra"

	"ctxgov/internal/governor"
	"ctxgov/internal/tiering"
	"ctxgov/internal/unit"
)

var tiersCmd = &cobra.Command{
	Use:   "tiers [input-file]",
	Short: "Classify context units into loading tiers",
	Long: `Split context units into three loading tiers: tier 1 is loaded at
session start (target under 800 tokens), tier 2 on task start, tier 3 on
demand. Prints the tier assignments and the startup token savings.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runTiers,
}

func init() {
	rootCmd.AddCommand(tiersCmd)
}

func runTiers(cmd *cobra.Command, args []string) {
	data, err := readInputData(args)
	if err != nil {
		fatal("Error reading input: %v", err)
	}
	units, err := governor.ParseInput(data)
	if err != nil {
		fatal("Error parsing input: %v", err)
	}
	unit.NewEstimator().EstimateBatch(units)

	result := tiering.NewClassifier().ClassifyUnits(units)
	if err := printJSON(result); err != nil {
		fatal("Error formatting output: %v", err)
	}
}
