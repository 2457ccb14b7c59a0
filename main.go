package main

import (
	"log"

	"github.com/slack-go/slack"
)

func main() {
	cfg := LoadConfig()

	db, err := InitAuditDB(cfg.AuditDBPath)
	if err != nil {
		log.Fatalf("Failed to init audit database: %v", err)
	}
	defer db.Close()

	session, err := NewSession(cfg.BackendURL, cfg.BackendUsername, cfg.BackendPassword)
	if err != nil {
		log.Fatalf("Backend login failed: %v", err)
	}
	backend := NewBackend(cfg.BackendURL, session)

	api := slack.New(
		cfg.SlackBotToken,
		slack.OptionAppLevelToken(cfg.SlackAppToken),
	)

	StartBacklogWatch(cfg, backend, db, api)

	log.Println("Starting Hazard Moderation Console...")
	console := NewConsole(cfg, db, backend, session, api)
	if err := console.Start(); err != nil {
		log.Fatalf("Slack console error: %v", err)
	}
}
