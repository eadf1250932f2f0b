package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicModel = "claude-3-5-haiku-20241022"

type AnthropicClient struct {
	client anthropic.Client
	model  string
}

func NewAnthropicClient(apiKey string, opts ...Option) *AnthropicClient {
	cfg := newClientConfig(anthropicModel, opts)
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(cfg.maxRetries),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	return &AnthropicClient{
		client: anthropic.NewClient(reqOpts...),
		model:  cfg.model,
	}
}

func (c *AnthropicClient) send(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("anthropic API returned no content")
	}

	return strings.TrimSpace(sb.String()), nil
}

func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.send(ctx, prompt, 2048)
}

func (c *AnthropicClient) CheckContradiction(ctx context.Context, stmtA, stmtB string) (bool, error) {
	result, err := c.send(ctx, fmt.Sprintf(contradictionPrompt, stmtA, stmtB), 50)
	if err != nil {
		return false, fmt.Errorf("check contradiction: %w", err)
	}

	return parseVerdict(result), nil
}
