package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/leads")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("CORS_ALLOW_ALL", "false")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GetAutomationInterval() != 2*time.Minute {
		t.Errorf("automation interval = %v, want 2m", cfg.GetAutomationInterval())
	}
	if cfg.GetWelcomeGrace() != 5*time.Minute {
		t.Errorf("welcome grace = %v, want 5m", cfg.GetWelcomeGrace())
	}
	if cfg.GetMailTransport() != "gmail" {
		t.Errorf("mail transport = %q, want gmail", cfg.GetMailTransport())
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is empty")
	}
}

func TestLoadRejectsUnknownMailTransport(t *testing.T) {
	setRequired(t)
	t.Setenv("MAIL_TRANSPORT", "carrier-pigeon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown mail transport")
	}
}

func TestMailCredentialsResolvedPerCall(t *testing.T) {
	setRequired(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	t.Setenv("GMAIL_CLIENT_ID", "")
	if cfg.GetMailCredentials().Complete() {
		t.Fatal("expected incomplete credentials")
	}

	t.Setenv("GMAIL_CLIENT_ID", "id")
	t.Setenv("GMAIL_CLIENT_SECRET", "secret")
	t.Setenv("GMAIL_REFRESH_TOKEN", "refresh")
	if !cfg.GetMailCredentials().Complete() {
		t.Fatal("expected credentials set after load to be visible")
	}
}

func TestAIEnabledFollowsProviderKey(t *testing.T) {
	cfg := &Config{AIProvider: "openai", GeminiAPIKey: "g"}
	if cfg.IsAIEnabled() {
		t.Fatal("openai provider without key must be disabled")
	}
	cfg.OpenAIAPIKey = "o"
	if !cfg.IsAIEnabled() {
		t.Fatal("openai provider with key must be enabled")
	}
}
