package main

import (
	"os"
	"path/filepath"
	"testing"
)

func setMinimalValidConfigEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_APP_TOKEN", "xapp-test")
	t.Setenv("BACKEND_URL", "https://backend.test/")
	t.Setenv("BACKEND_USERNAME", "mod")
	t.Setenv("BACKEND_PASSWORD", "secret")
	t.Setenv("TIMEZONE", "UTC")
}

func TestLoadConfigFromEnvWithDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing-config.yaml"))
	setMinimalValidConfigEnv(t)
	t.Setenv("MODERATORS", "alice, U12345")

	cfg := LoadConfig()

	if cfg.SlackBotToken != "xoxb-test" {
		t.Fatalf("unexpected slack bot token: %q", cfg.SlackBotToken)
	}
	if cfg.BackendURL != "https://backend.test" {
		t.Fatalf("backend url not trimmed: %q", cfg.BackendURL)
	}
	if cfg.PageSize != 10 {
		t.Fatalf("unexpected page size default: %d", cfg.PageSize)
	}
	if cfg.AuditDBPath != "./hazardmod.db" {
		t.Fatalf("unexpected audit db path default: %q", cfg.AuditDBPath)
	}
	if cfg.SuggestModel != defaultSuggestModel {
		t.Fatalf("unexpected suggest model default: %q", cfg.SuggestModel)
	}
	if cfg.Location == nil || cfg.Location.String() != "UTC" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
	if len(cfg.Moderators) != 2 || cfg.Moderators[0] != "alice" {
		t.Fatalf("unexpected moderators: %v", cfg.Moderators)
	}
	if cfg.SuggestEnabled() {
		t.Fatal("suggest must be disabled without an API key")
	}
}

func TestLoadConfigYAMLAndEnvOverride(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
slack_bot_token: "yaml-bot"
slack_app_token: "yaml-app"
backend_url: "https://yaml.backend.test"
backend_username: "yaml-user"
backend_password: "yaml-pass"
mod_channel_id: "C0YAML"
page_size: 25
watch_schedule: "*/30 * * * *"
timezone: "UTC"
moderators:
  - alice
  - bob
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("CONFIG_PATH", cfgPath)
	// Env beats YAML.
	t.Setenv("BACKEND_USERNAME", "env-user")
	t.Setenv("PAGE_SIZE", "50")

	cfg := LoadConfig()

	if cfg.SlackBotToken != "yaml-bot" {
		t.Fatalf("yaml token not loaded: %q", cfg.SlackBotToken)
	}
	if cfg.BackendUsername != "env-user" {
		t.Fatalf("env override not applied: %q", cfg.BackendUsername)
	}
	if cfg.PageSize != 50 {
		t.Fatalf("page size override not applied: %d", cfg.PageSize)
	}
	if cfg.ModChannelID != "C0YAML" {
		t.Fatalf("mod channel = %q", cfg.ModChannelID)
	}
	if cfg.WatchSchedule != "*/30 * * * *" {
		t.Fatalf("watch schedule = %q", cfg.WatchSchedule)
	}
	if len(cfg.Moderators) != 2 {
		t.Fatalf("moderators = %v", cfg.Moderators)
	}
}

func TestIsModeratorName(t *testing.T) {
	cfg := Config{Moderators: []string{"Alice Nguyen", " bob "}}

	if !cfg.IsModeratorName("alice nguyen") {
		t.Fatal("name match must be case-insensitive")
	}
	if !cfg.IsModeratorName("Bob") {
		t.Fatal("name match must trim whitespace")
	}
	if cfg.IsModeratorName("carol") {
		t.Fatal("unlisted name must not match")
	}
}
