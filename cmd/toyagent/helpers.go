package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toyagent/cli/internal/api"
	"github.com/toyagent/cli/internal/config"
)

// newClient creates an API client honoring the --dev flag, the
// TOYAGENT_BACKEND_URL environment variable, and the project config.
func newClient(cmd *cobra.Command) (*api.Client, *config.ProjectConfig) {
	devMode, _ := cmd.Flags().GetBool("dev")
	cfg := config.LoadProjectConfigFromCwd()
	return api.NewClient(config.GetBackendURL(cfg, devMode)), cfg
}

// jsonOutput reports whether --json was passed.
func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
