package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/faqbot-platform/faqbot/internal/config"
)

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// StreamFunc receives one generated text chunk. Returning an error stops
// the stream.
type StreamFunc func(ctx context.Context, chunk string) error

// Generator is the text-generation collaborator. CompleteStreaming delivers
// chunks as they arrive; Complete returns the full text in one call.
type Generator interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	CompleteStreaming(ctx context.Context, system, prompt string, fn StreamFunc) error
}

// Client wraps the OpenAI API for embeddings and chat completion.
type Client struct {
	api            *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	temperature    float32
	maxTokens      int
}

// NewClient creates an OpenAI-backed Client from config.
func NewClient(cfg config.OpenAIConfig) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: 120 * time.Second,
	}

	return &Client{
		api:            openai.NewClientWithConfig(clientConfig),
		chatModel:      cfg.ChatModel,
		embeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		temperature:    cfg.Temperature,
		maxTokens:      cfg.MaxTokens,
	}
}

// Embed returns the embedding vector for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds multiple texts in one API call. Used by the corpus indexer.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model:          c.embeddingModel,
		Input:          texts,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vecs := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vecs[i] = d.Embedding
	}
	return vecs, nil
}

// Complete performs a single non-streamed chat completion.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    chatMessages(system, prompt),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("creating chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteStreaming performs a streamed chat completion, invoking fn for
// every content delta. The stream is finite and not restartable; context
// cancellation tears down the underlying connection.
func (c *Client) CompleteStreaming(ctx context.Context, system, prompt string, fn StreamFunc) error {
	stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    chatMessages(system, prompt),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Stream:      true,
	})
	if err != nil {
		return fmt.Errorf("opening chat completion stream: %w", err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("receiving stream chunk: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			if err := fn(ctx, delta); err != nil {
				return err
			}
		}
	}
}

func chatMessages(system, prompt string) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})
	return msgs
}
