// Package openai adapts go-openai to the embedding, explanation and intro
// interfaces the services depend on.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultEmbeddingModel      = openai.SmallEmbedding3
	DefaultEmbeddingDimensions = 1536
	DefaultChatModel           = openai.GPT4oMini

	// maxEmbeddingChars keeps input comfortably under the 8k token limit of
	// the embedding models.
	maxEmbeddingChars = 24000

	defaultMaxAttempts = 3
	defaultBackoff     = 500 * time.Millisecond
)

var (
	ErrEmptyText       = errors.New("text cannot be empty")
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	ErrNoEmbedding     = errors.New("embedding response contained no data")
	ErrNoChoices       = errors.New("chat completion returned no choices")
)

// EmbeddingAPI is the embeddings half of *openai.Client.
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// ChatAPI is the chat half of *openai.Client.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client embeds participant text and drafts explanations and intros.
type Client struct {
	embeddings     EmbeddingAPI
	chat           ChatAPI
	embeddingModel openai.EmbeddingModel
	dimensions     int
	chatModel      string
	maxAttempts    int
	backoff        time.Duration
}

type Config struct {
	APIKey              string
	BaseURL             string
	EmbeddingModel      string
	EmbeddingDimensions int
	ChatModel           string
}

func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

func NewClientWithConfig(cfg Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	raw := openai.NewClientWithConfig(clientCfg)

	c := &Client{
		embeddings:     raw,
		chat:           raw,
		embeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		dimensions:     cfg.EmbeddingDimensions,
		chatModel:      cfg.ChatModel,
	}
	c.applyDefaults()
	return c
}

func (c *Client) applyDefaults() {
	if c.embeddingModel == "" {
		c.embeddingModel = DefaultEmbeddingModel
	}
	if c.dimensions <= 0 {
		c.dimensions = DefaultEmbeddingDimensions
	}
	if c.chatModel == "" {
		c.chatModel = DefaultChatModel
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = defaultMaxAttempts
	}
	if c.backoff <= 0 {
		c.backoff = defaultBackoff
	}
}

// GenerateEmbedding embeds text after collapsing whitespace and capping its
// length. Rate limits and server errors are retried with linear backoff.
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	text = normalizeText(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.embeddingModel,
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.embeddings.CreateEmbeddings(ctx, req)
		if err == nil {
			return c.firstEmbedding(resp)
		}
		lastErr = err
		if !retryable(err) || attempt == c.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to create embedding: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}
	return nil, fmt.Errorf("failed to create embedding: %w", lastErr)
}

func (c *Client) firstEmbedding(resp openai.EmbeddingResponse) ([]float32, error) {
	if len(resp.Data) == 0 {
		return nil, ErrNoEmbedding
	}
	embedding := resp.Data[0].Embedding
	if len(embedding) != c.dimensions {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrWrongDimensions, len(embedding), c.dimensions)
	}
	return embedding, nil
}

func normalizeText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if runes := []rune(text); len(runes) > maxEmbeddingChars {
		text = string(runes[:maxEmbeddingChars])
	}
	return text
}

// retryable reports rate limiting and upstream 5xx responses.
func retryable(err error) bool {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		return false
	}
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
