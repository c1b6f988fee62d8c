package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"ctxgov/internal/config"
	"ctxgov/internal/governor"
	"ctxgov/internal/metrics"
	"ctxgov/internal/model"
	"ctxgov/internal/pathfilter"
	"ctxgov/internal/storage"
)

var (
	planBudget        int
	planIntent        string
	planModel         string
	planQuery         string
	planOutput        string
	planNoCostOpt     bool
	planNoTiered      bool
	planNoRelevance   bool
	planNoFilter      bool
	planNoMetrics     bool
	planExperimentID  string
	planVariant       string
	planAssignmentKey string
	planQuiet         bool
)

var planCmd = &cobra.Command{
	Use:   "plan [input-file]",
	Short: "Generate an execution plan for a set of context units",
	Long: `Generate a budget-compliant execution plan from context units supplied
as JSON (a bare array or an object with a "context_units" key). Reads the
named file, or stdin when no file is given. The plan is written to stdout.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlan,
}

func init() {
	planCmd.Flags().IntVarP(&planBudget, "budget", "b", 0, "Token budget (default from config)")
	planCmd.Flags().StringVarP(&planIntent, "intent", "i", "", "Task intent (default: auto-classify)")
	planCmd.Flags().StringVarP(&planModel, "model", "m", "", "Target model (default from config)")
	planCmd.Flags().StringVarP(&planQuery, "query", "q", "", "Current task query for relevance matching")
	planCmd.Flags().StringVarP(&planOutput, "output", "o", "", "Write the plan to a file instead of stdout")
	planCmd.Flags().BoolVar(&planNoCostOpt, "no-cost-optimize", false, "Disable cheaper-model recommendations")
	planCmd.Flags().BoolVar(&planNoTiered, "no-tiered", false, "Disable tiered context classification")
	planCmd.Flags().BoolVar(&planNoRelevance, "no-relevance", false, "Disable git-based relevance scoring")
	planCmd.Flags().BoolVar(&planNoFilter, "no-filter", false, "Disable automatic package file filtering")
	planCmd.Flags().BoolVar(&planNoMetrics, "no-metrics", false, "Do not record session metrics")
	planCmd.Flags().StringVar(&planExperimentID, "experiment-id", "", "A/B experiment identifier")
	planCmd.Flags().StringVar(&planVariant, "variant", governor.VariantAuto,
		"Experiment variant: optimized, control, or auto")
	planCmd.Flags().StringVar(&planAssignmentKey, "assignment-key", "",
		"Stable key for deterministic variant assignment")
	planCmd.Flags().BoolVar(&planQuiet, "quiet", false, "Suppress the summary on stderr")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) {
	start := time.Now()
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

	opts := governor.DefaultOptions()
	opts.Budget = cfg.Planning.DefaultBudget
	if planBudget > 0 {
		opts.Budget = planBudget
	}
	opts.Intent = planIntent
	opts.TargetModel = cfg.Planning.DefaultModel
	if planModel != "" {
		opts.TargetModel = planModel
	}
	opts.Query = planQuery
	opts.PreferCostSavings = cfg.Planning.PreferCostSavings && !planNoCostOpt
	opts.AutoFilterPackages = cfg.Planning.AutoFilterPackages && !planNoFilter
	opts.UseTieredArchitecture = cfg.Planning.TieredArchitecture && !planNoTiered
	opts.UseRelevanceScoring = cfg.Planning.RelevanceScoring && !planNoRelevance
	opts.ProjectRoot = projectRootFlag
	opts.CustomIgnores = loadIgnores(cfg)
	opts.Catalog = loadCatalog()

	opts.ExperimentID = planExperimentID
	opts.AssignmentKey = planAssignmentKey
	opts.ExperimentVariant = governor.ResolveVariant(planExperimentID, planVariant, planAssignmentKey)
	if planExperimentID != "" && opts.ExperimentVariant == governor.VariantControl {
		opts.AutoFilterPackages = false
		opts.UseTieredArchitecture = false
		opts.UseRelevanceScoring = false
		opts.ApplyPruning = false
		if !planQuiet {
			fmt.Fprintln(os.Stderr,
				"Experiment control variant active: filtering, relevance/tiered assists, and pruning are disabled.")
		}
	}

	var store *storage.Store
	if cfg.Metrics.Enabled && !planNoMetrics {
		store, err = storage.Open(metricsDir(cfg), logger)
		if err != nil {
			logger.Warn("Metrics disabled", map[string]interface{}{"error": err.Error()})
		} else {
			defer store.Close()
			opts.Collector = metrics.NewCollector(store)
		}
	}

	engine := governor.New(logger)
	plan, err := engine.CreatePlan(units, opts)
	if err != nil {
		fatal("Error creating plan: %v", err)
	}

	payload, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		fatal("Error encoding plan: %v", err)
	}

	if store != nil {
		rec := &storage.PlanRecord{
			PlanID:       plan.PlanID,
			CreatedAt:    time.Now().UTC(),
			Intent:       plan.Constraints.Intent,
			Budget:       plan.Constraints.TokenBudget,
			OutputTokens: plan.Statistics.OutputTokens,
			Fingerprint:  plan.Fingerprint,
			Payload:      payload,
		}
		if err := store.SavePlan(rec); err != nil {
			logger.Warn("Failed to persist plan", map[string]interface{}{
				"planId": plan.PlanID,
				"error":  err.Error(),
			})
		}
	}

	if planOutput != "" {
		if err := os.WriteFile(planOutput, append(payload, '\n'), 0644); err != nil {
			fatal("Error writing plan: %v", err)
		}
	} else {
		fmt.Println(string(payload))
	}

	if !planQuiet {
		fmt.Fprintf(os.Stderr, "Plan %s: %d -> %d tokens (%.1f%% reduction), model %s, quality %s\n",
			plan.PlanID,
			plan.Statistics.InputTokens,
			plan.Statistics.OutputTokens,
			plan.Statistics.ReductionPercentage,
			plan.Recommendations.Model.Recommended,
			plan.QualityAssurance.QualityImpact)
		for _, w := range plan.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}
		fmt.Fprintf(os.Stderr, "(Planning took %dms)\n", time.Since(start).Milliseconds())
	}
}

// loadIgnores merges config ignores with <root>/.ctxgov/filter.toml.
func loadIgnores(cfg *config.Config) []string {
	ignores := append([]string{}, cfg.Filter.CustomIgnores...)
	path := filepath.Join(config.ConfigDir(projectRootFlag), pathfilter.IgnoreFile)
	extra, err := pathfilter.LoadCustomIgnores(path)
	if err != nil {
		fatal("Error loading %s: %v", path, err)
	}
	return append(ignores, extra...)
}

// loadCatalog builds the model catalog with <root>/.ctxgov/models.toml applied.
func loadCatalog() *model.Catalog {
	catalog := model.DefaultCatalog()
	path := filepath.Join(config.ConfigDir(projectRootFlag), model.OverridesFile)
	if err := model.LoadOverrides(catalog, path); err != nil {
		fatal("Error loading %s: %v", path, err)
	}
	return catalog
}

// metricsDir resolves the metrics database directory.
func metricsDir(cfg *config.Config) string {
	if cfg.Metrics.Dir != "" {
		return cfg.Metrics.Dir
	}
	return config.ConfigDir(projectRootFlag)
}
