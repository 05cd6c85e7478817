package ai

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// SystemPrompt creates a system message.
func SystemPrompt(content string) Message {
	return Message{Role: openai.ChatMessageRoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: openai.ChatMessageRoleUser, Content: content}
}

// LLMService is the LLM service interface.
type LLMService interface {
	// Chat performs synchronous chat completion.
	Chat(ctx context.Context, messages []Message) (string, error)
}

// LLMConfig represents LLM service configuration.
type LLMConfig struct {
	Provider    string // deepseek, openai, siliconflow, ollama, zai
	Model       string // deepseek-chat, gpt-4o, glm-4.7, etc.
	APIKey      string
	BaseURL     string
	MaxTokens   int     // default: 2048
	Temperature float32 // default: 0.7
	Timeout     int     // request timeout in seconds (default: 120)
}

type llmService struct {
	client      *openai.Client
	model       string
	provider    string
	maxTokens   int
	temperature float32
	timeout     int
}

// newHTTPClient builds the shared HTTP client for provider calls. The overall
// request deadline comes from the per-call context, not the client.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// NewLLMService creates a new LLMService for any OpenAI-compatible provider.
func NewLLMService(cfg *LLMConfig) (LLMService, error) {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = newHTTPClient()

	client := openai.NewClientWithConfig(clientConfig)

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120
	}

	return &llmService{
		client:      client,
		model:       cfg.Model,
		provider:    cfg.Provider,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
	}, nil
}

func (s *llmService) Chat(ctx context.Context, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.timeout)*time.Second)
	defer cancel()

	slog.Debug("LLM: chat request",
		"model", s.model,
		"messages_count", len(messages),
		"max_tokens", s.maxTokens,
	)

	startTime := time.Now()

	req := openai.ChatCompletionRequest{
		Model:       s.model,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
		Messages:    convertMessages(messages),
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Error("LLM: chat request failed", "error", err)
		return "", fmt.Errorf("LLM chat failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		slog.Warn("LLM: empty response")
		return "", fmt.Errorf("empty response from LLM")
	}

	slog.Debug("LLM: chat response received",
		"content_length", len(resp.Choices[0].Message.Content),
		"total_tokens", resp.Usage.TotalTokens,
		"duration_ms", time.Since(startTime).Milliseconds(),
	)

	return resp.Choices[0].Message.Content, nil
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	converted := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		converted[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}
	return converted
}
