package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProjectConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".toyagent", "config.yaml")

	cfg := &ProjectConfig{
		Backend: BackendConfig{URL: "http://localhost:9000"},
		Chats:   map[string]string{"support": "c-123"},
		Workflows: map[string]string{
			"daily-report": "wf-456",
		},
		Defaults: Defaults{Timeout: 120},
	}

	if err := SaveProjectConfig(path, cfg); err != nil {
		t.Fatalf("SaveProjectConfig failed: %v", err)
	}

	loaded, err := LoadProjectConfig(path)
	if err != nil {
		t.Fatalf("LoadProjectConfig failed: %v", err)
	}

	if loaded.Backend.URL != "http://localhost:9000" {
		t.Errorf("backend url = %q", loaded.Backend.URL)
	}
	if loaded.ResolveChat("support") != "c-123" {
		t.Errorf("chat alias not resolved: %q", loaded.ResolveChat("support"))
	}
	if loaded.ResolveChat("c-999") != "c-999" {
		t.Errorf("raw id should pass through: %q", loaded.ResolveChat("c-999"))
	}
	if loaded.ResolveWorkflow("daily-report") != "wf-456" {
		t.Errorf("workflow alias not resolved")
	}
	if loaded.Defaults.Timeout != 120 {
		t.Errorf("timeout = %d", loaded.Defaults.Timeout)
	}
}

func TestResolveChat_NilConfig(t *testing.T) {
	var cfg *ProjectConfig
	if got := cfg.ResolveChat("c-1"); got != "c-1" {
		t.Errorf("nil config should pass through, got %q", got)
	}
}

func TestGetBackendURL(t *testing.T) {
	t.Setenv("TOYAGENT_BACKEND_URL", "")
	os.Unsetenv("TOYAGENT_BACKEND_URL")

	if got := GetBackendURL(nil, false); got != DefaultBackendURL {
		t.Errorf("default: got %q", got)
	}

	cfg := &ProjectConfig{Backend: BackendConfig{URL: "http://agent.internal:8000"}}
	if got := GetBackendURL(cfg, false); got != "http://agent.internal:8000" {
		t.Errorf("config url: got %q", got)
	}

	t.Setenv("TOYAGENT_BACKEND_URL", "http://override:1234")
	if got := GetBackendURL(cfg, true); got != "http://override:1234" {
		t.Errorf("env override: got %q", got)
	}
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStoreWithDir(t.TempDir())

	if got := store.ActiveChat(); got != "" {
		t.Fatalf("fresh store should have no active chat, got %q", got)
	}

	if err := store.SetActiveChat("c-42"); err != nil {
		t.Fatalf("SetActiveChat failed: %v", err)
	}
	if got := store.ActiveChat(); got != "c-42" {
		t.Fatalf("ActiveChat = %q, want c-42", got)
	}

	// Overwrite keeps working on an existing file.
	if err := store.SetActiveChat("c-43"); err != nil {
		t.Fatalf("SetActiveChat failed: %v", err)
	}
	if got := store.ActiveChat(); got != "c-43" {
		t.Fatalf("ActiveChat = %q, want c-43", got)
	}

	if err := store.ClearActiveChat(); err != nil {
		t.Fatalf("ClearActiveChat failed: %v", err)
	}
	if got := store.ActiveChat(); got != "" {
		t.Fatalf("ActiveChat after clear = %q, want empty", got)
	}
}
