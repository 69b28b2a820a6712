// Package llm adapts Anthropic's Claude API (primary) and OpenAI's API
// (embeddings, since Claude has no embeddings endpoint) to
// port.LlmGateway. Grounded on the teacher's internal/infra/summarizer
// package: Claude's circuit-breaker+retry wrapped doSummarize becomes
// Complete/CompleteJSON, and openai.go's client construction grounds the
// embeddings call dropped from the teacher's summarizer (which never
// embedded text) but present in rcliao-briefly's internal/llm package
// (GenerateEmbedding), adapted from Gemini's genai SDK to go-openai's
// CreateEmbeddings.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"afrisignal/internal/resilience/circuitbreaker"
	"afrisignal/internal/resilience/retry"
)

const (
	maxPromptChars = 10000
	defaultModel   = anthropic.ModelClaudeSonnet4_5_20250929
	maxTokens      = 1024
)

// Config holds API keys and the embedding model name.
type Config struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	EmbeddingModel  string
}

// Gateway implements port.LlmGateway over Claude (text) and OpenAI
// (embeddings), each call circuit-breaker- and retry-wrapped.
type Gateway struct {
	claude         anthropic.Client
	openai         *openai.Client
	embeddingModel openai.EmbeddingModel
	claudeBreaker  *circuitbreaker.CircuitBreaker
	openaiBreaker  *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// New builds a Gateway from cfg.
func New(cfg Config) *Gateway {
	model := openai.AdaEmbeddingV2
	if cfg.EmbeddingModel != "" {
		model = openai.EmbeddingModel(cfg.EmbeddingModel)
	}
	return &Gateway{
		claude:         anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey)),
		openai:         openai.NewClient(cfg.OpenAIAPIKey),
		embeddingModel: model,
		claudeBreaker:  circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		openaiBreaker:  circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
	}
}

// Complete sends prompt to Claude and returns the raw text response.
func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	var result string
	retryErr := retry.WithBackoff(ctx, g.retryConfig, func() error {
		cbResult, err := g.claudeBreaker.Execute(func() (interface{}, error) {
			return g.doComplete(ctx, prompt)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}
		result = cbResult.(string)
		return nil
	})
	if retryErr != nil {
		return "", fmt.Errorf("llm: complete failed after retries: %w", retryErr)
	}
	return result, nil
}

// CompleteJSON sends prompt to Claude, instructing a JSON-only response,
// and unmarshals it into out.
func (g *Gateway) CompleteJSON(ctx context.Context, prompt string, out any) error {
	jsonPrompt := prompt + "\n\nRespond with JSON only, no prose, no markdown fences."
	text, err := g.Complete(ctx, jsonPrompt)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(stripFences(text)), out); err != nil {
		return fmt.Errorf("llm: unmarshal JSON response: %w", err)
	}
	return nil
}

func stripFences(s string) string {
	start := 0
	end := len(s)
	for start < end && (s[start] == '`' || s[start] == '\n' || s[start] == ' ') {
		start++
	}
	for end > start && (s[end-1] == '`' || s[end-1] == '\n' || s[end-1] == ' ') {
		end--
	}
	if start >= end {
		return s
	}
	return s[start:end]
}

func (g *Gateway) doComplete(ctx context.Context, prompt string) (interface{}, error) {
	truncated := prompt
	if len(truncated) > maxPromptChars {
		truncated = truncated[:maxPromptChars]
	}

	message, err := g.claude.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     defaultModel,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(truncated)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude api error: %w", err)
	}
	if len(message.Content) == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected response type")
	}
	return textBlock.Text, nil
}

// Embed returns an embedding vector for text via OpenAI's embeddings API.
func (g *Gateway) Embed(ctx context.Context, text string) ([]float32, error) {
	var result []float32
	retryErr := retry.WithBackoff(ctx, g.retryConfig, func() error {
		cbResult, err := g.openaiBreaker.Execute(func() (interface{}, error) {
			return g.doEmbed(ctx, text)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}
		result = cbResult.([]float32)
		return nil
	})
	if retryErr != nil {
		return nil, fmt.Errorf("llm: embed failed after retries: %w", retryErr)
	}
	return result, nil
}

func (g *Gateway) doEmbed(ctx context.Context, text string) (interface{}, error) {
	resp, err := g.openai.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: g.embeddingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings error: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai returned no embedding data")
	}
	return resp.Data[0].Embedding, nil
}
