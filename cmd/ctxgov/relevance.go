package main

import (
	"github.com/spf13/cobra"

	"ctxgov/internal/governor"
	"ctxgov/internal/relevance"
	"ctxgov/internal/unit"
	"ctxgov/internal/workstate"
)

var relevanceCmd = &cobra.Command{
	Use:   "relevance [input-file]",
	Short: "Score context relevance against the current work state",
	Long: `Score every context unit against the current git work state (changed
and staged files, branch intent) and report how much of the context is waste:
tokens sitting in low or zero relevance units.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRelevance,
}

func init() {
	rootCmd.AddCommand(relevanceCmd)
}

// relevanceOutput pairs per-unit scores with the waste analysis.
type relevanceOutput struct {
	WorkState *workstate.Snapshot      `json:"work_state"`
	Units     []relevanceUnit          `json:"units"`
	Waste     *relevance.WasteAnalysis `json:"waste_analysis"`
}

type relevanceUnit struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Tokens int             `json:"tokens"`
	Score  relevance.Score `json:"relevance"`
}

func runRelevance(cmd *cobra.Command, args []string) {
	data, err := readInputData(args)
	if err != nil {
		fatal("Error reading input: %v", err)
	}
	units, err := governor.ParseInput(data)
	if err != nil {
		fatal("Error parsing input: %v", err)
	}
	unit.NewEstimator().EstimateBatch(units)

	snapshot := workstate.Capture(projectRootFlag)
	scorer := relevance.NewScorer(projectRootFlag, snapshot)

	out := relevanceOutput{
		WorkState: snapshot,
		Units:     make([]relevanceUnit, 0, len(units)),
	}
	for _, u := range units {
		out.Units = append(out.Units, relevanceUnit{
			ID:     u.ID,
			Type:   u.Type,
			Tokens: u.Tokens,
			Score:  scorer.ScoreUnit(u),
		})
	}
	out.Waste = scorer.AnalyzeContextWaste(units)

	if err := printJSON(out); err != nil {
		fatal("Error formatting output: %v", err)
	}
}
