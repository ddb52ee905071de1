package config

import (
	"os"
	"path/filepath"
	"testing"
)

// chdirTemp moves the test into a fresh temp directory so Load() picks up
// the config.yaml written there (or the absence of one).
func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})
	return tmpDir
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BIND_ADDR", "PORT", "ENVIRONMENT", "BASE_URL",
		"LLM_BASE_URL", "LLM_MODEL", "LLM_API_KEY", "LLM_TEMPERATURE",
		"CHAT_HISTORY_LIMIT", "CHAT_MAX_TOOL_ITERATIONS",
	} {
		os.Unsetenv(key)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	tmpDir := chdirTemp(t)
	clearEnv(t)

	yamlContent := `
port: "3443"
env: "test"
llm:
  base_url: "http://localhost:11434/v1"
  model: "qwen3:14b"
`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set env vars to override YAML values
	t.Setenv("PORT", "4443")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "4443" {
		t.Errorf("expected Port=4443 (from env), got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("expected Env=production (from env), got %s", cfg.Env)
	}
	if cfg.Version != "test-version" {
		t.Errorf("expected Version=test-version, got %s", cfg.Version)
	}

	// Verify BaseURL was auto-derived from PORT
	if cfg.BaseURL != "http://localhost:4443" {
		t.Errorf("expected BaseURL=http://localhost:4443 (auto-derived from PORT), got %s", cfg.BaseURL)
	}

	// Verify YAML value used for LLM endpoint (proves YAML was read)
	if cfg.LLM.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("expected LLM.BaseURL=http://localhost:11434/v1 (from yaml), got %s", cfg.LLM.BaseURL)
	}
	if cfg.LLM.Model != "qwen3:14b" {
		t.Errorf("expected LLM.Model=qwen3:14b (from yaml), got %s", cfg.LLM.Model)
	}
}

func TestLoad_BaseURLExplicit(t *testing.T) {
	tmpDir := chdirTemp(t)
	clearEnv(t)

	yamlContent := `
port: "3443"
env: "test"
base_url: "http://my-server.internal:8080"
`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.BaseURL != "http://my-server.internal:8080" {
		t.Errorf("expected BaseURL=http://my-server.internal:8080 (explicit), got %s", cfg.BaseURL)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)

	// Without config.yaml, configuration comes from env vars and defaults.
	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected Port=8080 (default), got %s", cfg.Port)
	}
	if cfg.Env != "local" {
		t.Errorf("expected Env=local (default), got %s", cfg.Env)
	}
	if cfg.Chat.HistoryLimit != 20 {
		t.Errorf("expected Chat.HistoryLimit=20 (default), got %d", cfg.Chat.HistoryLimit)
	}
	if cfg.Chat.MaxToolIterations != 10 {
		t.Errorf("expected Chat.MaxToolIterations=10 (default), got %d", cfg.Chat.MaxToolIterations)
	}
	if !cfg.LLM.IsConfigured() {
		t.Error("expected LLM to be configured from defaults")
	}
}

func TestLoad_SecretOnlyFromEnv(t *testing.T) {
	tmpDir := chdirTemp(t)
	clearEnv(t)

	// An api key in YAML must be ignored; only the env var counts.
	yamlContent := `
port: "3443"
env: "test"
llm:
  api_key: "yaml-secret"
`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("LLM_API_KEY", "env-secret")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.LLM.APIKey != "env-secret" {
		t.Errorf("expected APIKey=env-secret (from env), got %s", cfg.LLM.APIKey)
	}
}

func TestLoad_InvalidHistoryLimit(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)

	t.Setenv("CHAT_HISTORY_LIMIT", "0")

	_, err := Load("test-version")
	if err == nil {
		t.Error("expected error for zero history limit")
	}
}

func TestLoad_InvalidTemperature(t *testing.T) {
	chdirTemp(t)
	clearEnv(t)

	t.Setenv("LLM_TEMPERATURE", "3.5")

	_, err := Load("test-version")
	if err == nil {
		t.Error("expected error for out-of-range temperature")
	}
}
