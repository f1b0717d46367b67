package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/faqbot-platform/faqbot/internal/config"
	"github.com/faqbot-platform/faqbot/internal/database"
	"github.com/faqbot-platform/faqbot/internal/eval"
	"github.com/faqbot-platform/faqbot/internal/index"
	"github.com/faqbot-platform/faqbot/internal/llm"
	"github.com/faqbot-platform/faqbot/internal/retriever"
)

func main() {
	questionsPath := flag.String("questions", "", "file with one evaluation question per line")
	jsonOut := flag.Bool("json", false, "emit metrics as JSON")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	questions, err := loadQuestions(*questionsPath, flag.Args())
	if err != nil {
		slog.Error("loading questions", "error", err)
		os.Exit(1)
	}
	if len(questions) == 0 {
		fmt.Fprintln(os.Stderr, "usage: rageval [-questions file] [-json] [question ...]")
		os.Exit(2)
	}

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	llmClient := llm.NewClient(cfg.OpenAI)
	ret := retriever.New(llmClient, index.NewPostgresRepository(pool))

	metrics, err := eval.Batch(ctx, ret, questions, cfg.Chat.TopK, cfg.Chat.SimilarityThreshold)
	if err != nil {
		slog.Error("evaluating", "error", err)
		os.Exit(1)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(metrics); err != nil {
			slog.Error("encoding metrics", "error", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("questions scored:  %d\n", metrics.QuestionsScored)
	fmt.Printf("avg usage ratio:   %.3f\n", metrics.AvgUsageRatio)
	fmt.Printf("avg similarity:    %.3f\n", metrics.AvgSimilarity)
	fmt.Printf("docs used/total:   %d/%d\n", metrics.TotalUsedDocs, metrics.TotalDocs)
}

func loadQuestions(path string, args []string) ([]string, error) {
	questions := append([]string(nil), args...)

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			q := strings.TrimSpace(scanner.Text())
			if q != "" {
				questions = append(questions, q)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	return questions, nil
}
