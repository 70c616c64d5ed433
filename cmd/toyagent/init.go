package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/toyagent/cli/internal/config"
	"github.com/toyagent/cli/internal/ui"
)

// initCmd writes a starter project config.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize project configuration",
	Long: `Initialize project configuration.

Writes .toyagent/config.yaml in the current directory. The file holds the
backend URL plus chat and workflow aliases usable anywhere an id is
accepted.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("backend", "", "Backend URL to record (defaults to "+config.DefaultBackendURL+")")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	path := filepath.Join(cwd, ".toyagent", "config.yaml")

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	backend, _ := cmd.Flags().GetString("backend")
	if backend == "" {
		backend = config.DefaultBackendURL
	}

	cfg := &config.ProjectConfig{
		Backend:   config.BackendConfig{URL: backend},
		Chats:     map[string]string{},
		Workflows: map[string]string{},
	}
	if err := config.SaveProjectConfig(path, cfg); err != nil {
		return err
	}

	ui.PrintSuccess("Wrote %s", path)
	ui.PrintDim("Add chat and workflow aliases there to use names instead of ids.")
	return nil
}
