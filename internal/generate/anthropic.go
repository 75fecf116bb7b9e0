package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider generates documents through the Anthropic Messages API.
type AnthropicProvider struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicProvider creates a provider using the given API key and model.
func NewAnthropicProvider(apiKey, model string, maxTokens int) *AnthropicProvider {
	return &AnthropicProvider{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: int64(maxTokens),
	}
}

// Name identifies the provider in logs.
func (p *AnthropicProvider) Name() string { return "anthropic" }

// Generate executes a single completion and returns the text response.
func (p *AnthropicProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	var result strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			result.WriteString(variant.Text)
		}
	}

	if result.Len() == 0 {
		return "", fmt.Errorf("anthropic returned no text content")
	}
	return result.String(), nil
}
