package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/skstore/creditbot/internal/config"
	"github.com/skstore/creditbot/internal/groq"
	"github.com/skstore/creditbot/internal/health"
	"github.com/skstore/creditbot/internal/pipeline"
	"github.com/skstore/creditbot/internal/storage"
	"github.com/skstore/creditbot/internal/telegram"
)

func main() {
	// Setup logger
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(log)

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found")
	}

	// Load config
	cfg := config.Load()

	if cfg.BotToken == "" {
		log.Error("BOT_TOKEN is required")
		os.Exit(1)
	}
	if cfg.SalesChatID == 0 {
		log.Warn("SALES_CHAT_ID not set, automatic crediting is disabled")
	}

	// Initialize storage
	store, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Error("init storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	log.Info("storage initialized", "path", cfg.DBPath)

	// Initialize Groq client
	var groqClient *groq.Client
	if cfg.GroqAPIKey != "" {
		groqClient = groq.NewClient(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel)
		log.Info("groq client initialized", "model", cfg.GroqModel)
	} else {
		log.Info("GROQ_API_KEY not set, AI chat disabled")
	}

	// Initialize telegram bot
	bot, err := telegram.New(cfg, store, groqClient, log)
	if err != nil {
		log.Error("init telegram bot", "error", err)
		os.Exit(1)
	}
	log.Info("telegram bot initialized")

	// Initialize credit pipeline
	pipe := pipeline.New(cfg, store, bot, log)
	bot.SetSalesHandler(pipe.HandleMessage)
	log.Info("credit pipeline initialized", "sales_chat_id", cfg.SalesChatID)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start health server
	healthServer := health.NewServer(log)
	go func() {
		if err := healthServer.Start(ctx, cfg.HealthPort); err != nil && err != http.ErrServerClosed {
			log.Error("health server", "error", err)
		}
	}()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Info("shutting down...")
		cancel()
	}()

	// Start bot polling
	log.Info("starting bot polling...")
	bot.Start(ctx)
}
