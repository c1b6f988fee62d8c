package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ctxgov/internal/metrics"
	"ctxgov/internal/storage"
)

var metricsDays int

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Optimization metrics from recorded planning sessions",
}

var metricsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Human-readable optimization report",
	Run:   runMetricsReport,
}

var metricsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Aggregate metrics as JSON",
	Run:   runMetricsSummary,
}

var metricsTrendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Per-day token and cost trend as JSON",
	Run:   runMetricsTrend,
}

func init() {
	metricsCmd.PersistentFlags().IntVar(&metricsDays, "days", 7, "Number of days to include")
	metricsCmd.AddCommand(metricsReportCmd)
	metricsCmd.AddCommand(metricsSummaryCmd)
	metricsCmd.AddCommand(metricsTrendCmd)
	rootCmd.AddCommand(metricsCmd)
}

// openCollector opens the metrics store for read commands.
func openCollector() (*metrics.Collector, *storage.Store) {
	logger := newLogger()
	cfg := loadProjectConfig(logger)
	store, err := storage.Open(metricsDir(cfg), logger)
	if err != nil {
		fatal("Error opening metrics store: %v", err)
	}
	return metrics.NewCollector(store), store
}

func runMetricsReport(cmd *cobra.Command, args []string) {
	collector, store := openCollector()
	defer store.Close()

	report, err := collector.GenerateReport(metricsDays)
	if err != nil {
		fatal("Error generating report: %v", err)
	}
	fmt.Println(report)
}

func runMetricsSummary(cmd *cobra.Command, args []string) {
	collector, store := openCollector()
	defer store.Close()

	summary, err := collector.GetSummary(metricsDays)
	if err != nil {
		fatal("Error loading summary: %v", err)
	}
	if err := printJSON(summary); err != nil {
		fatal("Error formatting output: %v", err)
	}
}

func runMetricsTrend(cmd *cobra.Command, args []string) {
	collector, store := openCollector()
	defer store.Close()

	trend, err := collector.GetTrend(metricsDays)
	if err != nil {
		fatal("Error loading trend: %v", err)
	}
	if err := printJSON(trend); err != nil {
		fatal("Error formatting output: %v", err)
	}
}
