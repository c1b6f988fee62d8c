package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ctxgov/internal/governor"
	"ctxgov/internal/intent"
)

var (
	intentQuery string
	intentList  bool
)

var intentCmd = &cobra.Command{
	Use:   "intent [input-file]",
	Short: "Classify the task intent of a context set",
	Long: `Classify what the task is trying to do (code generation, debugging,
explanation, search, planning, review) from the combined unit content and an
optional query. Prints the winning intent with per-intent scores and the
recommended context strategy.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runIntent,
}

func init() {
	intentCmd.Flags().StringVarP(&intentQuery, "query", "q", "", "Current task query (weighted double)")
	intentCmd.Flags().BoolVar(&intentList, "list", false, "List known intents and exit")
	rootCmd.AddCommand(intentCmd)
}

func runIntent(cmd *cobra.Command, args []string) {
	if intentList {
		for _, name := range intent.KnownIntents() {
			fmt.Println(name)
		}
		return
	}

	data, err := readInputData(args)
	if err != nil {
		fatal("Error reading input: %v", err)
	}
	units, err := governor.ParseInput(data)
	if err != nil {
		fatal("Error parsing input: %v", err)
	}

	contents := make([]string, 0, len(units))
	for _, u := range units {
		contents = append(contents, u.Content)
	}
	result := intent.NewClassifier().Classify(strings.Join(contents, " "), intentQuery)

	if err := printJSON(result); err != nil {
		fatal("Error formatting output: %v", err)
	}
}
