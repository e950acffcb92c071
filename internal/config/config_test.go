package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.DBPath != "./credits.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.HealthPort != 8080 {
		t.Errorf("HealthPort = %d", cfg.HealthPort)
	}
	if len(cfg.CompletedWords) == 0 || len(cfg.PendingWords) == 0 {
		t.Error("default vocabulary missing")
	}
	if cfg.GroqModel != "llama-3.3-70b-versatile" {
		t.Errorf("GroqModel = %q", cfg.GroqModel)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token123")
	t.Setenv("SALES_CHAT_ID", "-100200300")
	t.Setenv("ADMIN_USER_IDS", "1, 2,3,,nope")
	t.Setenv("COMPLETED_WORDS", "completed, paid ,")
	t.Setenv("PENDING_WORDS", "pending")
	t.Setenv("GROQ_BASE_URL", "https://example.test/v1/")

	cfg := Load()

	if cfg.BotToken != "token123" {
		t.Errorf("BotToken = %q", cfg.BotToken)
	}
	if cfg.SalesChatID != -100200300 {
		t.Errorf("SalesChatID = %d", cfg.SalesChatID)
	}
	if !cfg.AdminIDs[1] || !cfg.AdminIDs[2] || !cfg.AdminIDs[3] || len(cfg.AdminIDs) != 3 {
		t.Errorf("AdminIDs = %v", cfg.AdminIDs)
	}
	if len(cfg.CompletedWords) != 2 || cfg.CompletedWords[0] != "completed" || cfg.CompletedWords[1] != "paid" {
		t.Errorf("CompletedWords = %v", cfg.CompletedWords)
	}
	if len(cfg.PendingWords) != 1 || cfg.PendingWords[0] != "pending" {
		t.Errorf("PendingWords = %v", cfg.PendingWords)
	}
	if cfg.GroqBaseURL != "https://example.test/v1" {
		t.Errorf("GroqBaseURL = %q, want trailing slash trimmed", cfg.GroqBaseURL)
	}
}
