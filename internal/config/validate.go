package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	if c.OpenAI.APIKey == "" {
		errs = append(errs, "OPENAI_API_KEY is required")
	}

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1–65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1–65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1–65535, got %d", c.Redis.Port))
	}

	// Retrieval parameters
	if c.Chat.TopK < 1 {
		errs = append(errs, fmt.Sprintf("CHAT_TOP_K must be at least 1, got %d", c.Chat.TopK))
	}
	if c.Chat.SimilarityThreshold < 0 || c.Chat.SimilarityThreshold > 1 {
		errs = append(errs, fmt.Sprintf("CHAT_SIMILARITY_THRESHOLD must be in [0,1], got %g", c.Chat.SimilarityThreshold))
	}
	if c.Chat.RelevanceFloor < 0 || c.Chat.RelevanceFloor > 1 {
		errs = append(errs, fmt.Sprintf("CHAT_RELEVANCE_FLOOR must be in [0,1], got %g", c.Chat.RelevanceFloor))
	}
	if c.Chat.EscalationBand < 0 || c.Chat.EscalationBand > 1 {
		errs = append(errs, fmt.Sprintf("CHAT_ESCALATION_BAND must be in [0,1], got %g", c.Chat.EscalationBand))
	}
	if c.Chat.MaxTurns < 1 {
		errs = append(errs, fmt.Sprintf("CHAT_MAX_TURNS must be at least 1, got %d", c.Chat.MaxTurns))
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
