package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		LineChannelToken:  "token",
		LineChannelSecret: "secret",
		Port:              "8080",
		LogLevel:          "info",
		ShutdownTimeout:   30 * time.Second,
		DataDir:           "./data",
		MenuImageDir:      "./images/richmenus",
		Bot: BotConfig{
			WebhookTimeout:      30 * time.Second,
			MaxMessagesPerReply: 5,
			MaxEventsPerWebhook: 100,
			MaxPostbackDataSize: 300,
		},
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestValidateMissingCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.LineChannelToken = ""
	cfg.LineChannelSecret = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error for missing credentials")
	}
	if !strings.Contains(err.Error(), "LINE_CHANNEL_ACCESS_TOKEN") {
		t.Errorf("Expected token error, got %v", err)
	}
	if !strings.Contains(err.Error(), "LINE_CHANNEL_SECRET") {
		t.Errorf("Expected secret error, got %v", err)
	}
}

func TestValidateBotBoundaries(t *testing.T) {
	cfg := validConfig()
	cfg.Bot.MaxMessagesPerReply = 6
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for MaxMessagesPerReply above LINE limit")
	}

	cfg = validConfig()
	cfg.Bot.WebhookTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for zero webhook timeout")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "env-token")
	t.Setenv("LINE_CHANNEL_SECRET", "env-secret")
	t.Setenv("PORT", "9999")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("MAX_EVENTS_PER_WEBHOOK", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected config to load, got %v", err)
	}

	if cfg.LineChannelToken != "env-token" {
		t.Errorf("Expected token from env, got %q", cfg.LineChannelToken)
	}
	if cfg.Port != "9999" {
		t.Errorf("Expected port from env, got %q", cfg.Port)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("Expected 5s shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Bot.MaxEventsPerWebhook != 50 {
		t.Errorf("Expected 50 max events, got %d", cfg.Bot.MaxEventsPerWebhook)
	}
}

func TestLoadFailsWithoutCredentials(t *testing.T) {
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "")
	t.Setenv("LINE_CHANNEL_SECRET", "")

	if _, err := Load(); err == nil {
		t.Error("Expected Load to fail without credentials")
	}
}

func TestSQLitePath(t *testing.T) {
	cfg := validConfig()
	cfg.DataDir = "/data"
	if got := cfg.SQLitePath(); got != "/data/bot.db" {
		t.Errorf("Expected /data/bot.db, got %q", got)
	}
}
