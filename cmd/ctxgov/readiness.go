package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ctxgov/internal/config"
	"ctxgov/internal/readiness"
)

var readinessDir string

var readinessCmd = &cobra.Command{
	Use:   "readiness",
	Short: "Run fixed planning scenarios as a launch gate",
	Long: `Run the YAML scenario fixtures under the scenario directory through
the planning engine and check their expectations. A failing scenario means
decision behavior drifted from what was signed off. Exits non-zero on any
failure.`,
	Run: runReadiness,
}

func init() {
	readinessCmd.Flags().StringVar(&readinessDir, "scenarios", "",
		"Scenario directory (default <root>/.ctxgov/scenarios)")
	rootCmd.AddCommand(readinessCmd)
}

func runReadiness(cmd *cobra.Command, args []string) {
	dir := readinessDir
	if dir == "" {
		dir = filepath.Join(config.ConfigDir(projectRootFlag), "scenarios")
	}

	scenarios, err := readiness.LoadDir(dir)
	if err != nil {
		fatal("Error loading scenarios: %v", err)
	}
	if len(scenarios) == 0 {
		fatal("No scenarios found in %s", dir)
	}

	results := readiness.RunAll(scenarios)
	failed := 0
	for _, r := range results {
		if r.Passed {
			fmt.Printf("[OK]   %s\n", r.Name)
			continue
		}
		failed++
		fmt.Printf("[FAIL] %s\n", r.Name)
		for _, f := range r.Failures {
			fmt.Printf("       %s\n", f)
		}
	}

	fmt.Printf("\n%d/%d scenarios passed\n", len(results)-failed, len(results))
	if failed > 0 {
		os.Exit(1)
	}
}
