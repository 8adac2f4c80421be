// Package provider implements translation backends.
package provider

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/dangehub/translay"
)

// OpenAIProvider calls a chat-completion-style endpoint with configurable
// prompt templates. Any OpenAI-compatible server works; the endpoint may be
// the full /chat/completions URL as hosts usually configure it.
type OpenAIProvider struct {
	client       *openai.Client
	model        string
	temperature  float32
	systemPrompt string
	userPrompt   string
}

// OpenAIConfig holds configuration for the OpenAI-compatible provider.
type OpenAIConfig struct {
	APIKey       string
	APIURL       string // Full endpoint or base URL; empty means api.openai.com
	Model        string
	Temperature  float32 // Default 0.2
	SystemPrompt string  // Optional template with {text}, {from}, {to}
	UserPrompt   string  // Required template with {text}, {from}, {to}
}

// FromSettings builds a provider from the engine settings surface.
func FromSettings(s translay.Settings) *OpenAIProvider {
	return NewOpenAIProvider(OpenAIConfig{
		APIKey:       s.APIKey,
		APIURL:       s.APIURL,
		Model:        s.Model,
		SystemPrompt: s.SystemPrompt,
		UserPrompt:   s.UserPrompt,
	})
}

// NewOpenAIProvider creates a new OpenAI-compatible provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if base := normalizeBaseURL(cfg.APIURL); base != "" {
		config.BaseURL = base
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	return &OpenAIProvider{
		client:       openai.NewClientWithConfig(config),
		model:        cfg.Model,
		temperature:  temperature,
		systemPrompt: cfg.SystemPrompt,
		userPrompt:   cfg.UserPrompt,
	}
}

// Translate translates one text. Errors are fatal for this single request;
// there is no retry layered on top.
func (p *OpenAIProvider) Translate(ctx context.Context, req translay.Request) (string, error) {
	if p.model == "" {
		return "", &translay.ConfigError{Field: "model"}
	}
	if strings.TrimSpace(p.userPrompt) == "" {
		return "", &translay.ConfigError{Field: "user prompt"}
	}

	var messages []openai.ChatCompletionMessage
	if strings.TrimSpace(p.systemPrompt) != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: fillTemplate(p.systemPrompt, req),
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: fillTemplate(p.userPrompt, req),
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: p.temperature,
		Stream:      false,
	})
	if err != nil {
		return "", &translay.ProviderError{
			Message:   "chat completion call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}
	if len(resp.Choices) == 0 {
		return "", &translay.ProviderError{Message: "no choices in response", Retryable: true}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &translay.ProviderError{Message: "empty translation content"}
	}
	return content, nil
}

// fillTemplate substitutes the {text}, {from}, {to} placeholders.
func fillTemplate(template string, req translay.Request) string {
	from := req.From
	if from == "" {
		from = "auto"
	}
	to := req.To
	if to == "" {
		to = "zh"
	}
	r := strings.NewReplacer("{text}", req.Text, "{from}", from, "{to}", to)
	return r.Replace(template)
}

// normalizeBaseURL maps a configured endpoint to the client's base URL. Hosts
// configure the full chat-completions URL; the client appends the path
// itself.
func normalizeBaseURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	url = strings.TrimSuffix(url, "/")
	url = strings.TrimSuffix(url, "/chat/completions")
	return url
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range []string{"rate limit", "429", "timeout", "503", "502", "connection"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
