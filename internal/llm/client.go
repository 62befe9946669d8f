// Package llm wraps the chat-completions endpoint used for arbitration and
// tagging. The client does one call per Complete; retry policy lives with the
// caller so a malformed response can be re-asked, not just a failed transport.
package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/festivaldir/curator/internal/metrics"
	"github.com/festivaldir/curator/pkg/circuitbreaker"
	"github.com/festivaldir/curator/pkg/config"
)

// CompletionRequest is one system+user prompt pair.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

// CompletionResponse carries the raw model text plus token usage for metrics.
type CompletionResponse struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// Completer is the narrow surface the curator stages depend on; tests
// substitute a fake.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// Client talks to a DeepSeek-compatible endpoint through the go-openai SDK.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	breaker     *circuitbreaker.Breaker
	logger      *zap.Logger
}

func NewClient(cfg config.LLMConfig, logger *zap.Logger) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     time.Duration(cfg.TimeoutSec) * time.Second,
		breaker: circuitbreaker.New("llm", circuitbreaker.Config{
			FailureThreshold: uint32(cfg.BreakerFailures),
			SuccessThreshold: 2,
			Cooldown:         time.Duration(cfg.BreakerCooldownSec) * time.Second,
			OnStateChange: func(name string, _, to circuitbreaker.State) {
				metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			},
			Logger: logger,
		}),
		logger: logger,
	}
}

// Complete issues a single chat completion. A tripped breaker surfaces as an
// error on the call, which the caller's retry policy treats like any other
// transport failure.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var resp openai.ChatCompletionResponse
	err := c.breaker.Execute(ctx, func() error {
		var callErr error
		resp, callErr = c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
			},
			Temperature: temperature,
			MaxTokens:   maxTokens,
		})
		return callErr
	})
	if err != nil {
		c.logger.Warn("LLM call failed",
			zap.String("breaker_state", c.breaker.State().String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	c.logger.Debug("LLM call completed",
		zap.String("model", c.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return &CompletionResponse{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}
