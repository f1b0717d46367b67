package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/faqbot-platform/faqbot/internal/api"
	"github.com/faqbot-platform/faqbot/internal/chat"
	"github.com/faqbot-platform/faqbot/internal/config"
	"github.com/faqbot-platform/faqbot/internal/database"
	"github.com/faqbot-platform/faqbot/internal/gate"
	"github.com/faqbot-platform/faqbot/internal/index"
	"github.com/faqbot-platform/faqbot/internal/llm"
	"github.com/faqbot-platform/faqbot/internal/memory"
	"github.com/faqbot-platform/faqbot/internal/middleware"
	iredis "github.com/faqbot-platform/faqbot/internal/redis"
	"github.com/faqbot-platform/faqbot/internal/retriever"
	"github.com/faqbot-platform/faqbot/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// OpenAI
	llmClient := llm.NewClient(cfg.OpenAI)

	// Retrieval pipeline
	faqIndex := index.NewPostgresRepository(pool)
	ret := retriever.New(llmClient, faqIndex)

	// Conversation memory
	mem := memory.NewStore(redisClient, cfg.Chat.MaxTurns, cfg.Chat.SessionTTL)

	// Topic gate
	topicGate := gate.New(cfg.Chat.RelevanceFloor, cfg.Chat.EscalationBand, llmClient)

	// Chat orchestration
	orc := chat.NewOrchestrator(ret, mem, topicGate, llmClient, cfg.Chat.DeclineMessage)
	chatHandler := chat.NewHandler(orc, mem, cfg.Chat)

	handlers := api.HandlerSet{
		Chat:         chatHandler.Chat,
		ClearSession: chatHandler.ClearSession,
	}

	if cfg.RateLimit.Enabled {
		rl := middleware.NewRateLimiter(redisClient, cfg.RateLimit.MaxReqs, cfg.RateLimit.WindowSec)
		handlers.ChatRateLimiter = rl.Middleware
	}

	// Router
	router := api.NewRouter(pool, redisClient, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
	}, handlers)

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
