package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ctxgov/internal/storage"
)

var plansLimit int

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List recently generated plans",
	Run:   runPlans,
}

var plansShowCmd = &cobra.Command{
	Use:   "show <plan-id>",
	Short: "Print a stored plan",
	Args:  cobra.ExactArgs(1),
	Run:   runPlansShow,
}

func init() {
	plansCmd.Flags().IntVar(&plansLimit, "limit", 20, "Maximum number of plans to list")
	plansCmd.AddCommand(plansShowCmd)
	rootCmd.AddCommand(plansCmd)
}

func openStore() *storage.Store {
	logger := newLogger()
	cfg := loadProjectConfig(logger)
	store, err := storage.Open(metricsDir(cfg), logger)
	if err != nil {
		fatal("Error opening plan store: %v", err)
	}
	return store
}

func runPlans(cmd *cobra.Command, args []string) {
	store := openStore()
	defer store.Close()

	plans, err := store.ListPlans(plansLimit)
	if err != nil {
		fatal("Error listing plans: %v", err)
	}
	if err := printJSON(plans); err != nil {
		fatal("Error formatting output: %v", err)
	}
}

func runPlansShow(cmd *cobra.Command, args []string) {
	store := openStore()
	defer store.Close()

	rec, err := store.LoadPlan(args[0])
	if err != nil {
		fatal("Error loading plan: %v", err)
	}
	fmt.Println(string(rec.Payload))
}
