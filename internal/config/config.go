package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	OpenAI    OpenAIConfig
	Chat      ChatConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	Temperature    float32
	MaxTokens      int
}

// ChatConfig tunes retrieval, the topic gate, and conversation memory.
type ChatConfig struct {
	TopK                int
	SimilarityThreshold float64
	RelevanceFloor      float64
	EscalationBand      float64
	MaxTurns            int
	SessionTTL          time.Duration
	DeclineMessage      string
}

type RateLimitConfig struct {
	Enabled   bool
	MaxReqs   int
	WindowSec int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DefaultDeclineMessage is sent verbatim for questions outside the FAQ domain.
const DefaultDeclineMessage = "저는 스마트 스토어 FAQ를 위한 챗봇입니다. 스마트 스토어에 대한 질문을 부탁드립니다."

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		DB: DBConfig{
			Host:     k.String("db.host"),
			Port:     k.Int("db.port"),
			User:     k.String("db.user"),
			Password: k.String("db.password"),
			Name:     k.String("db.name"),
			SSLMode:  k.String("db.sslmode"),
			MaxConns: int32(k.Int("db.max.conns")),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         k.String("openai.api.key"),
			BaseURL:        k.String("openai.base.url"),
			ChatModel:      k.String("openai.chat.model"),
			EmbeddingModel: k.String("openai.embedding.model"),
			Temperature:    float32(k.Float64("openai.temperature")),
			MaxTokens:      k.Int("openai.max.tokens"),
		},
		Chat: ChatConfig{
			TopK:                k.Int("chat.top.k"),
			SimilarityThreshold: k.Float64("chat.similarity.threshold"),
			RelevanceFloor:      k.Float64("chat.relevance.floor"),
			EscalationBand:      k.Float64("chat.escalation.band"),
			MaxTurns:            k.Int("chat.max.turns"),
			DeclineMessage:      k.String("chat.decline.message"),
		},
		RateLimit: RateLimitConfig{
			Enabled:   k.Bool("rate.limit.enabled"),
			MaxReqs:   k.Int("rate.limit.max.reqs"),
			WindowSec: k.Int("rate.limit.window.sec"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	if origins := k.String("cors.allowed.origins"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, o)
			}
		}
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "faqbot"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "faqbot"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.OpenAI.ChatModel == "" {
		cfg.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.OpenAI.Temperature == 0 {
		cfg.OpenAI.Temperature = 0.1
	}
	if cfg.OpenAI.MaxTokens == 0 {
		cfg.OpenAI.MaxTokens = 5000
	}
	if cfg.Chat.TopK == 0 {
		cfg.Chat.TopK = 3
	}
	if cfg.Chat.SimilarityThreshold == 0 {
		cfg.Chat.SimilarityThreshold = 0.1
	}
	if cfg.Chat.RelevanceFloor == 0 {
		cfg.Chat.RelevanceFloor = 0.3
	}
	if cfg.Chat.MaxTurns == 0 {
		cfg.Chat.MaxTurns = 3
	}
	if cfg.Chat.DeclineMessage == "" {
		cfg.Chat.DeclineMessage = DefaultDeclineMessage
	}
	if cfg.RateLimit.MaxReqs == 0 {
		cfg.RateLimit.MaxReqs = 30
	}
	if cfg.RateLimit.WindowSec == 0 {
		cfg.RateLimit.WindowSec = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Parse durations
	ttlStr := k.String("chat.session.ttl")
	if ttlStr == "" {
		ttlStr = "24h"
	}
	cfg.Chat.SessionTTL, err = time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("parsing chat session ttl: %w", err)
	}

	return cfg, nil
}
