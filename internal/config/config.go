package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// Telegram
	BotToken string

	// Sales registration chat (where the payment notifier posts)
	SalesChatID int64

	// Admins allowed to grant credits manually and view stats
	AdminIDs map[int64]bool

	// Database
	DBPath string

	// Classification vocabulary (substring match, case-insensitive)
	CompletedWords []string
	PendingWords   []string

	// Groq AI chat
	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string

	// Health server
	HealthPort int
}

// Default vocabulary mirrors the Brazilian Portuguese status messages posted
// by the upstream payment notifier, both gender forms included.
const (
	defaultCompletedWords = "concluído,concluída,concluido,concluida,aprovado,aprovada,confirmado,confirmada,pago,paga,sucesso"
	defaultPendingWords   = "aguardando,pendente,processando,em andamento"
)

func Load() *Config {
	cfg := &Config{
		// Telegram
		BotToken:    getEnv("BOT_TOKEN", ""),
		SalesChatID: getEnvInt64("SALES_CHAT_ID", 0),

		// Database
		DBPath: getEnv("DB_PATH", "./credits.db"),

		// Vocabulary
		CompletedWords: splitWords(getEnv("COMPLETED_WORDS", defaultCompletedWords)),
		PendingWords:   splitWords(getEnv("PENDING_WORDS", defaultPendingWords)),

		// Groq
		GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
		GroqBaseURL: strings.TrimSuffix(getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"), "/"),
		GroqModel:   getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),

		// Health
		HealthPort: getEnvInt("HEALTH_PORT", 8080),
	}

	// Parse admin user IDs
	cfg.AdminIDs = make(map[int64]bool)
	adminIDs := getEnv("ADMIN_USER_IDS", "")
	for _, idStr := range strings.Split(adminIDs, ",") {
		idStr = strings.TrimSpace(idStr)
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			cfg.AdminIDs[id] = true
		}
	}

	return cfg
}

func splitWords(s string) []string {
	var words []string
	for _, w := range strings.Split(s, ",") {
		w = strings.TrimSpace(w)
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}
