package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/faqbot-platform/faqbot/internal/config"
	"github.com/faqbot-platform/faqbot/internal/corpus"
	"github.com/faqbot-platform/faqbot/internal/database"
	"github.com/faqbot-platform/faqbot/internal/index"
	"github.com/faqbot-platform/faqbot/internal/llm"
)

const embedBatchSize = 64

func main() {
	corpusPath := flag.String("corpus", "data/final_result.json", "path to the FAQ corpus JSON file")
	migrationsPath := flag.String("migrations", "migrations", "path to SQL migrations")
	reset := flag.Bool("reset", false, "truncate the index before loading")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	ctx := context.Background()

	if err := database.RunMigrations(cfg.DB.DSN(), *migrationsPath); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	entries, err := corpus.Load(*corpusPath)
	if err != nil {
		slog.Error("loading corpus", "path", *corpusPath, "error", err)
		os.Exit(1)
	}
	slog.Info("corpus loaded", "path", *corpusPath, "entries", len(entries))

	repo := index.NewPostgresRepository(pool)
	if *reset {
		if err := repo.Reset(ctx); err != nil {
			slog.Error("resetting index", "error", err)
			os.Exit(1)
		}
		slog.Info("index reset")
	}

	llmClient := llm.NewClient(cfg.OpenAI)

	start := time.Now()
	var indexed int
	for _, batch := range corpus.Batches(entries, embedBatchSize) {
		questions := make([]string, len(batch))
		for i, e := range batch {
			questions[i] = e.Question
		}

		embeddings, err := llmClient.EmbedBatch(ctx, questions)
		if err != nil {
			slog.Error("embedding batch", "indexed", indexed, "error", err)
			os.Exit(1)
		}

		rows := make([]index.Entry, len(batch))
		for i, e := range batch {
			rows[i] = index.Entry{
				ID:        uuid.New(),
				Question:  e.Question,
				Answer:    corpus.CleanAnswer(e.Answer),
				Category:  e.Category,
				Keywords:  e.Keywords,
				Embedding: embeddings[i],
			}
		}

		if err := repo.InsertBatch(ctx, rows); err != nil {
			slog.Error("inserting batch", "indexed", indexed, "error", err)
			os.Exit(1)
		}

		indexed += len(batch)
		slog.Info("batch indexed", "indexed", indexed, "total", len(entries))
	}

	slog.Info("indexing complete", "entries", indexed, "elapsed", time.Since(start).Round(time.Second))
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.Level == "debug" {
		opts.Level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
}
