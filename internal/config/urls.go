// Package config provides backend URL and project configuration management
// for the ToyAgent CLI.
//
// This package handles backend URL resolution for production and development
// environments, the .toyagent/config.yaml project file, and the per-user
// session state that carries the active chat across invocations.
package config

import "os"

const (
	// DefaultBackendURL is the backend URL used when nothing else is
	// configured. ToyAgent deployments are self-hosted, so the default
	// points at a local instance.
	DefaultBackendURL = "http://localhost:8000"

	// DevBackendURL is the backend URL used in --dev mode.
	DevBackendURL = "http://localhost:8000"

	// backendURLEnv overrides the backend URL when set.
	backendURLEnv = "TOYAGENT_BACKEND_URL"
)

// GetBackendURL resolves the backend base URL.
//
// Resolution order: TOYAGENT_BACKEND_URL environment variable, then the
// project config's backend URL (when cfg is non-nil), then the dev or
// default URL.
//
// Parameters:
//   - cfg: The loaded project config, or nil
//   - devMode: If true, prefer the local development URL
//
// Returns:
//   - string: The backend base URL without a trailing slash
func GetBackendURL(cfg *ProjectConfig, devMode bool) string {
	if url := os.Getenv(backendURLEnv); url != "" {
		return url
	}
	if cfg != nil && cfg.Backend.URL != "" {
		return cfg.Backend.URL
	}
	if devMode {
		return DevBackendURL
	}
	return DefaultBackendURL
}
