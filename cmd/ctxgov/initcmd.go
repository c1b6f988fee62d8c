package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"ctxgov/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize ctxgov configuration in the project root",
	Long: `Write a default configuration to <root>/.ctxgov/config.json. Refuses
to overwrite an existing config unless --force is given.`,
	Run: runInit,
}

var configShowCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Run:   runConfigShow,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config")
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configShowCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	path := filepath.Join(config.ConfigDir(projectRootFlag), "config.json")
	if fileExists(path) && !initForce {
		fatal("Config already exists at %s (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	cfg.ProjectRoot = projectRootFlag
	if err := cfg.Save(projectRootFlag); err != nil {
		fatal("Error writing config: %v", err)
	}
	fmt.Printf("Initialized ctxgov config at %s\n", path)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	logger := newLogger()
	cfg := loadProjectConfig(logger)
	if err := printJSON(cfg); err != nil {
		fatal("Error formatting output: %v", err)
	}
}
