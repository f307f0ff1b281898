package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
server:
  host: "0.0.0.0"
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "vitalsink"
  user: "vitalsink"
  password: "secret"
  sslmode: "disable"
auth:
  api_key: "test-key-123"
insights:
  url: "https://llm.example.com/v1/chat/completions"
  api_key: "llm-key"
  model: "small-coach"
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadValid verifies that a well-formed YAML config loads with all fields populated.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "vitalsink" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "vitalsink")
	}
	if cfg.Auth.APIKey != "test-key-123" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "test-key-123")
	}
	if cfg.Insights.Model != "small-coach" {
		t.Errorf("insights.model = %q, want %q", cfg.Insights.Model, "small-coach")
	}
}

// TestInsightsTimeoutDefault verifies that the insight client timeout defaults
// to 30s when the config omits it. The outbound call must always be bounded.
func TestInsightsTimeoutDefault(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Insights.Timeout != 30*time.Second {
		t.Errorf("insights.timeout = %v, want 30s", cfg.Insights.Timeout)
	}
}

// TestEnvOverride verifies that VITALSINK_ env vars take precedence over YAML values.
// This ensures production deployments can override config via environment.
func TestEnvOverride(t *testing.T) {
	t.Setenv("VITALSINK_DB_HOST", "override-host")
	t.Setenv("VITALSINK_DB_PORT", "9999")
	t.Setenv("VITALSINK_AUTH_API_KEY", "env-key")
	t.Setenv("VITALSINK_INSIGHTS_URL", "https://env.example.com")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Host != "override-host" {
		t.Errorf("database.host = %q, want %q", cfg.Database.Host, "override-host")
	}
	if cfg.Database.Port != 9999 {
		t.Errorf("database.port = %d, want 9999", cfg.Database.Port)
	}
	if cfg.Auth.APIKey != "env-key" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "env-key")
	}
	if cfg.Insights.URL != "https://env.example.com" {
		t.Errorf("insights.url = %q, want env override", cfg.Insights.URL)
	}
	// Unchanged fields should keep YAML values
	if cfg.Database.Name != "vitalsink" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "vitalsink")
	}
}

// TestMissingDatabaseHost verifies validation rejects a config without database.host.
func TestMissingDatabaseHost(t *testing.T) {
	yaml := `
server:
  port: 8080
database:
  port: 5432
  name: "vitalsink"
  user: "vitalsink"
`
	if _, err := Load(writeTemp(t, yaml)); err == nil {
		t.Fatal("expected validation error for missing database.host")
	}
}

// TestDSN verifies the connection string format, including the sslmode default.
func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "vs", User: "u", Password: "p"}
	want := "postgres://u:p@db:5432/vs?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}

// TestAPIKeyOptional verifies a config without auth.api_key still loads;
// the webhook then runs unauthenticated (dev mode).
func TestAPIKeyOptional(t *testing.T) {
	yaml := `
server:
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "vitalsink"
  user: "vitalsink"
`
	cfg, err := Load(writeTemp(t, yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Auth.APIKey != "" {
		t.Errorf("auth.api_key = %q, want empty", cfg.Auth.APIKey)
	}
}
