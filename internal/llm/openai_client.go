// ABOUTME: OpenAI client for query embeddings and confirmation intent labels
// ABOUTME: Uses text-embedding-3-small for vectors, gpt-4o-mini at temperature 0 for intent (configurable)
package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/harper/dongne/internal/config"
	"github.com/harper/dongne/internal/metrics"
	"github.com/harper/dongne/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is the default model for intent classification
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
)

// intentPrompt asks for a single label. The example utterances are the
// colloquial Korean replies users actually type at the confirmation step.
const intentPrompt = `사용자가 추천을 볼지 묻는 질문에 답한 문장이야.
문장의 의도가 긍정이면 yes, 부정이면 no, 판단이 안 되면 neutral 중 한 단어만 출력해.
말투가 줄임말이나 귀여운 표현이어도 뜻으로만 판단해.

yes 예: "좋아", "ㅇㅋ", "응", "그래", "ㄱㄱ", "보여줘"
no 예: "싫어", "시러", "시렁", "싫엉", "ㄴㄴ", "아니", "별로", "다시"
neutral 예: "모르겠어", "흠", "아직", "글쎄"

문장: %q`

// zeroTemperature pins deterministic sampling. go-openai drops a literal 0
// from the request body, which would leave the server default in place.
const zeroTemperature = math.SmallestNonzeroFloat32

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel openai.EmbeddingModel
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:         apiKey,
		ChatModel:      DefaultChatModel,
		EmbeddingModel: DefaultEmbeddingModel,
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
	}
}

// ConfigFrom maps the openai config section onto a ClientConfig
func ConfigFrom(cfg config.OpenAIConfig) *ClientConfig {
	c := DefaultConfig(cfg.APIKey)
	if cfg.ChatModel != "" {
		c.ChatModel = cfg.ChatModel
	}
	if cfg.EmbeddingModel != "" {
		c.EmbeddingModel = openai.EmbeddingModel(cfg.EmbeddingModel)
	}
	if cfg.Timeout > 0 {
		c.Timeout = cfg.Timeout
	}
	c.MaxRetries = cfg.MaxRetries
	c.RetryDelay = cfg.RetryDelay
	return c
}

// OpenAIClient wraps the OpenAI API client with retry logic
type OpenAIClient struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration
}

// NewOpenAIClient creates a new OpenAI client with the given API key using default configuration
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom configuration
func NewOpenAIClientWithConfig(cfg *ClientConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(oc),
		chatModel:      cfg.ChatModel,
		embeddingModel: cfg.EmbeddingModel,
		timeout:        timeout,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
	}, nil
}

// Embed returns the embedding of text. Exactly one API call per invocation:
// no cache and no retry, a failure is the caller's empty result.
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float64, error) {
	var embedding []float64

	err := metrics.Observe(metrics.CallEmbedding, func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: c.embeddingModel,
		})
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return fmt.Errorf("no embeddings returned")
		}

		// Convert []float32 to []float64
		embedding32 := resp.Data[0].Embedding
		embedding = make([]float64, len(embedding32))
		for i, v := range embedding32 {
			embedding[i] = float64(v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	return embedding, nil
}

// ClassifyIntent returns the raw label the model gives for a confirmation reply.
// Interpreting the label is left to models.ParseIntent.
func (c *OpenAIClient) ClassifyIntent(ctx context.Context, text string) (string, error) {
	var label string
	attempt := 0

	err := metrics.Observe(metrics.CallIntent, func() error {
		return util.Retry(ctx, c.maxRetries, c.retryDelay, func(ctx context.Context) error {
			attempt++
			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
				Model: c.chatModel,
				Messages: []openai.ChatCompletionMessage{
					{
						Role:    openai.ChatMessageRoleUser,
						Content: fmt.Sprintf(intentPrompt, text),
					},
				},
				Temperature: zeroTemperature,
				MaxTokens:   5,
			})
			if err != nil {
				return fmt.Errorf("attempt %d: %w", attempt, err)
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("attempt %d: no completion choices returned", attempt)
			}

			label = strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content))
			return nil
		})
	})
	if err != nil {
		return "", fmt.Errorf("failed to classify intent after %d attempts: %w", attempt, err)
	}
	return label, nil
}
