package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type Config struct {
	SlackBotToken string `yaml:"slack_bot_token"`
	SlackAppToken string `yaml:"slack_app_token"`

	BackendURL      string `yaml:"backend_url"`
	BackendUsername string `yaml:"backend_username"`
	BackendPassword string `yaml:"backend_password"`

	ModChannelID string   `yaml:"mod_channel_id"`
	Moderators   []string `yaml:"moderators"`

	PageSize        int    `yaml:"page_size"`
	WatchSchedule   string `yaml:"watch_schedule"`
	AuditDBPath     string `yaml:"audit_db_path"`
	Timezone        string `yaml:"timezone"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	SuggestModel    string `yaml:"suggest_model"`

	Location *time.Location `yaml:"-"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackAppToken, "SLACK_APP_TOKEN")
	envOverride(&cfg.BackendURL, "BACKEND_URL")
	envOverride(&cfg.BackendUsername, "BACKEND_USERNAME")
	envOverride(&cfg.BackendPassword, "BACKEND_PASSWORD")
	envOverride(&cfg.ModChannelID, "MOD_CHANNEL_ID")
	envOverrideInt(&cfg.PageSize, "PAGE_SIZE")
	envOverride(&cfg.WatchSchedule, "WATCH_SCHEDULE")
	envOverride(&cfg.AuditDBPath, "AUDIT_DB_PATH")
	envOverride(&cfg.Timezone, "TIMEZONE")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.SuggestModel, "SUGGEST_MODEL")

	if names := os.Getenv("MODERATORS"); names != "" {
		cfg.Moderators = nil
		for _, name := range strings.Split(names, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				cfg.Moderators = append(cfg.Moderators, name)
			}
		}
	}

	// Defaults
	if cfg.PageSize == 0 {
		cfg.PageSize = 10
	}
	if cfg.AuditDBPath == "" {
		cfg.AuditDBPath = "./hazardmod.db"
	}
	if cfg.SuggestModel == "" {
		cfg.SuggestModel = defaultSuggestModel
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Asia/Ho_Chi_Minh"
	}

	// Validate required fields
	required := map[string]string{
		"slack_bot_token":  cfg.SlackBotToken,
		"slack_app_token":  cfg.SlackAppToken,
		"backend_url":      cfg.BackendURL,
		"backend_username": cfg.BackendUsername,
		"backend_password": cfg.BackendPassword,
	}
	for name, val := range required {
		if val == "" {
			log.Fatalf("Required config '%s' is not set (via config.yaml or env var)", name)
		}
	}

	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	if cfg.PageSize < 1 || cfg.PageSize > 100 {
		log.Fatalf("invalid page_size '%d': must be between 1 and 100", cfg.PageSize)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
	}
	cfg.Location = loc

	if cfg.WatchSchedule != "" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(cfg.WatchSchedule); err != nil {
			log.Fatalf("invalid watch_schedule '%s': %v", cfg.WatchSchedule, err)
		}
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

// SuggestEnabled reports whether LLM tag suggestion is configured.
func (c Config) SuggestEnabled() bool {
	return c.AnthropicAPIKey != ""
}

// IsModeratorName checks a display name against the configured moderator
// list. Slack user IDs in the list are matched elsewhere by resolved ID.
func (c Config) IsModeratorName(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, m := range c.Moderators {
		if strings.ToLower(strings.TrimSpace(m)) == name {
			return true
		}
	}
	return false
}
