package ai

import (
	"testing"
)

func TestNewLLMService_Defaults(t *testing.T) {
	cfg := &LLMConfig{
		Provider: "deepseek",
		Model:    "deepseek-chat",
		APIKey:   "test-key",
		BaseURL:  "https://api.deepseek.com",
	}

	svc, err := NewLLMService(cfg)
	if err != nil {
		t.Fatalf("NewLLMService() error = %v", err)
	}

	s, ok := svc.(*llmService)
	if !ok {
		t.Fatal("NewLLMService() did not return *llmService type")
	}
	if s.maxTokens != 2048 {
		t.Errorf("maxTokens = %v, want 2048", s.maxTokens)
	}
	if s.temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", s.temperature)
	}
	if s.timeout != 120 {
		t.Errorf("timeout = %v, want 120", s.timeout)
	}
}

func TestNewLLMService_ExplicitValues(t *testing.T) {
	cfg := &LLMConfig{
		Provider:    "openai",
		Model:       "gpt-4o",
		APIKey:      "test-key",
		MaxTokens:   4096,
		Temperature: 0.2,
		Timeout:     30,
	}

	svc, err := NewLLMService(cfg)
	if err != nil {
		t.Fatalf("NewLLMService() error = %v", err)
	}

	s := svc.(*llmService)
	if s.maxTokens != 4096 {
		t.Errorf("maxTokens = %v, want 4096", s.maxTokens)
	}
	if s.temperature != 0.2 {
		t.Errorf("temperature = %v, want 0.2", s.temperature)
	}
	if s.timeout != 30 {
		t.Errorf("timeout = %v, want 30", s.timeout)
	}
}

func TestMessageHelpers(t *testing.T) {
	system := SystemPrompt("be helpful")
	if system.Role != "system" || system.Content != "be helpful" {
		t.Errorf("SystemPrompt() = %+v", system)
	}

	user := UserMessage("hello")
	if user.Role != "user" || user.Content != "hello" {
		t.Errorf("UserMessage() = %+v", user)
	}
}

func TestConvertMessages(t *testing.T) {
	converted := convertMessages([]Message{
		SystemPrompt("a"),
		UserMessage("b"),
	})
	if len(converted) != 2 {
		t.Fatalf("convertMessages() len = %d, want 2", len(converted))
	}
	if converted[0].Role != "system" || converted[0].Content != "a" {
		t.Errorf("converted[0] = %+v", converted[0])
	}
	if converted[1].Role != "user" || converted[1].Content != "b" {
		t.Errorf("converted[1] = %+v", converted[1])
	}
}
