package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfig represents the .toyagent/config.yaml file.
type ProjectConfig struct {
	// Backend contains backend connection settings.
	Backend BackendConfig `yaml:"backend,omitempty"`

	// Chats maps chat aliases to chat IDs, so commands can say
	// "toyagent chat history support" instead of a UUID.
	Chats map[string]string `yaml:"chats,omitempty"`

	// Workflows maps workflow aliases to workflow IDs.
	Workflows map[string]string `yaml:"workflows,omitempty"`

	// Defaults contains default settings for streaming commands.
	Defaults Defaults `yaml:"defaults,omitempty"`
}

// BackendConfig contains backend connection settings.
type BackendConfig struct {
	// URL is the backend base URL (e.g. "http://localhost:8000").
	URL string `yaml:"url,omitempty"`
}

// Defaults contains default settings.
type Defaults struct {
	// Timeout is the stream timeout in seconds (0 means no timeout;
	// a stalled connection then blocks until cancelled).
	Timeout int `yaml:"timeout,omitempty"`
}

// ResolveChat resolves a chat alias to its ID.
//
// Parameters:
//   - nameOrID: A chat alias from the config, or a raw ID
//
// Returns:
//   - string: The resolved chat ID (the input unchanged if no alias matches)
func (c *ProjectConfig) ResolveChat(nameOrID string) string {
	if c != nil {
		if id, ok := c.Chats[nameOrID]; ok {
			return id
		}
	}
	return nameOrID
}

// ResolveWorkflow resolves a workflow alias to its ID.
//
// Parameters:
//   - nameOrID: A workflow alias from the config, or a raw ID
//
// Returns:
//   - string: The resolved workflow ID (the input unchanged if no alias matches)
func (c *ProjectConfig) ResolveWorkflow(nameOrID string) string {
	if c != nil {
		if id, ok := c.Workflows[nameOrID]; ok {
			return id
		}
	}
	return nameOrID
}

// LoadProjectConfig reads and parses a project config file.
//
// Parameters:
//   - path: The path to the config.yaml file
//
// Returns:
//   - *ProjectConfig: The parsed config
//   - error: Any error that occurred
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// LoadProjectConfigFromCwd loads the project config from the working
// directory, searching upward for a .toyagent/config.yaml.
//
// Returns:
//   - *ProjectConfig: The parsed config, or nil if no config file exists
func LoadProjectConfigFromCwd() *ProjectConfig {
	dir, err := os.Getwd()
	if err != nil {
		return nil
	}

	for {
		path := filepath.Join(dir, ".toyagent", "config.yaml")
		if _, err := os.Stat(path); err == nil {
			cfg, err := LoadProjectConfig(path)
			if err != nil {
				return nil
			}
			return cfg
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}

// SaveProjectConfig writes a project config file, creating the .toyagent
// directory if needed.
//
// Parameters:
//   - path: The path to the config.yaml file
//   - cfg: The config to write
//
// Returns:
//   - error: Any error that occurred
func SaveProjectConfig(path string, cfg *ProjectConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
