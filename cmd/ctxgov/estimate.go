package main

import (
	"github.com/spf13/cobra"

	"ctxgov/internal/governor"
	"ctxgov/internal/unit"
)

var estimateRawType string

var estimateCmd = &cobra.Command{
	Use:   "estimate [input-file]",
	Short: "Estimate token counts for context units",
	Long: `Estimate token counts for context units that do not carry one.
With --raw-type the input is treated as raw text of that content type
instead of unit JSON.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runEstimate,
}

func init() {
	estimateCmd.Flags().StringVar(&estimateRawType, "raw-type", "",
		"Treat input as raw text of this type (code, prose, json, markdown)")
	rootCmd.AddCommand(estimateCmd)
}

// estimateOutput reports per-unit estimates and the total.
type estimateOutput struct {
	Units []estimateUnit `json:"units,omitempty"`
	Total int            `json:"total_tokens"`
}

type estimateUnit struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Tokens int    `json:"tokens"`
}

func runEstimate(cmd *cobra.Command, args []string) {
	data, err := readInputData(args)
	if err != nil {
		fatal("Error reading input: %v", err)
	}

	estimator := unit.NewEstimator()

	if estimateRawType != "" {
		out := estimateOutput{Total: estimator.Estimate(string(data), estimateRawType)}
		if err := printJSON(out); err != nil {
			fatal("Error formatting output: %v", err)
		}
		return
	}

	units, err := governor.ParseInput(data)
	if err != nil {
		fatal("Error parsing input: %v", err)
	}
	estimator.EstimateBatch(units)

	out := estimateOutput{Units: make([]estimateUnit, 0, len(units))}
	for _, u := range units {
		out.Units = append(out.Units, estimateUnit{ID: u.ID, Type: u.Type, Tokens: u.Tokens})
		out.Total += u.Tokens
	}
	if err := printJSON(out); err != nil {
		fatal("Error formatting output: %v", err)
	}
}
