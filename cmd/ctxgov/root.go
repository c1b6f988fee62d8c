package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ctxgov/internal/config"
	"ctxgov/internal/logging"
	"ctxgov/internal/version"
)

var (
	// projectRootFlag is the CLI --project-root flag value
	projectRootFlag string
	logLevelFlag    string
	logFormatFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "ctxgov",
	Short: "ctxgov - Context Governor",
	Long: `ctxgov is a context optimization planning engine for LLM invocations.
It classifies task intent, scores and tiers context units, selects a model,
and produces a budget-compliant execution plan without degrading output
quality: reduction is hard-capped and protected content is never touched.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("ctxgov version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&projectRootFlag, "project-root", ".",
		"Project root directory (config and metrics live under <root>/.ctxgov)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "human",
		"Log format: human, json")
}

// newLogger builds the command logger from the persistent flags.
func newLogger() *logging.Logger {
	format := logging.HumanFormat
	if logFormatFlag == "json" {
		format = logging.JSONFormat
	}
	return logging.NewLogger(logging.Config{
		Format: format,
		Level:  logging.ParseLevel(logLevelFlag),
	})
}

// loadProjectConfig loads <project-root>/.ctxgov/config.json, falling back to
// defaults when absent or invalid.
func loadProjectConfig(logger *logging.Logger) *config.Config {
	cfg, err := config.LoadConfig(projectRootFlag)
	if err != nil {
		logger.Warn("Failed to load config, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		logger.Warn("Invalid config, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return config.DefaultConfig()
	}
	return cfg
}

// readInputData reads context units from the file named in args[0], or from
// stdin when no argument (or "-") is given.
func readInputData(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(args[0])
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
