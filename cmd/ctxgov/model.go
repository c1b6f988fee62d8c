package main

import (
	"github.com/spf13/cobra"

	"ctxgov/internal/model"
)

var (
	modelRequested string
	modelIntent    string
	modelTokens    int
	modelNoCostOpt bool
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Model catalog and selection",
}

var modelRecommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend a model for an intent and context size",
	Long: `Recommend a model given the requested model, task intent, and context
token count. Switches away from the requested model only for a context window
mismatch, a cheaper sufficient model, or a complexity upgrade from an economy
tier model.`,
	Run: runModelRecommend,
}

var modelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the known models and their capabilities",
	Run:   runModelList,
}

func init() {
	modelRecommendCmd.Flags().StringVarP(&modelRequested, "model", "m", model.DefaultModel, "Requested model")
	modelRecommendCmd.Flags().StringVarP(&modelIntent, "intent", "i", "generic", "Task intent")
	modelRecommendCmd.Flags().IntVarP(&modelTokens, "tokens", "t", 0, "Context token count")
	modelRecommendCmd.Flags().BoolVar(&modelNoCostOpt, "no-cost-optimize", false,
		"Disable cheaper-model recommendations")
	modelCmd.AddCommand(modelRecommendCmd)
	modelCmd.AddCommand(modelListCmd)
	rootCmd.AddCommand(modelCmd)
}

func runModelRecommend(cmd *cobra.Command, args []string) {
	selector := model.NewSelectorWithCatalog(loadCatalog())
	rec := selector.Select(modelRequested, modelIntent, modelTokens, !modelNoCostOpt)
	if err := printJSON(rec); err != nil {
		fatal("Error formatting output: %v", err)
	}
}

// modelEntry is one catalog row for list output.
type modelEntry struct {
	Name string `json:"name"`
	*model.Info
}

func runModelList(cmd *cobra.Command, args []string) {
	catalog := loadCatalog()
	entries := make([]modelEntry, 0)
	for _, name := range catalog.Names() {
		entries = append(entries, modelEntry{Name: name, Info: catalog.Get(name)})
	}
	if err := printJSON(entries); err != nil {
		fatal("Error formatting output: %v", err)
	}
}
