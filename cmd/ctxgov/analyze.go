package main

import (
	"github.com/spf13/cobra"

	"ctxgov/internal/analyzer"
	"ctxgov/internal/governor"
	"ctxgov/internal/pathfilter"
	"ctxgov/internal/unit"
)

var analyzeNoFilter bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze [input-file]",
	Short: "Analyze context composition and optimization opportunities",
	Long: `Inspect a set of context units without planning: token and priority
distribution per type, duplicate content, per-unit issues, and concrete
optimization opportunities with estimated savings.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeNoFilter, "no-filter", false,
		"Do not filter package/dependency files before analysis")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	logger := newLogger()
	cfg := loadProjectConfig(logger)

	data, err := readInputData(args)
	if err != nil {
		fatal("Error reading input: %v", err)
	}
	units, err := governor.ParseInput(data)
	if err != nil {
		fatal("Error parsing input: %v", err)
	}
	unit.NewEstimator().EstimateBatch(units)

	var filter *pathfilter.Filter
	if !analyzeNoFilter {
		filter = pathfilter.New(projectRootFlag, loadIgnores(cfg))
	}

	report := analyzer.New(filter).Analyze(units)
	if err := printJSON(report); err != nil {
		fatal("Error formatting output: %v", err)
	}
}
