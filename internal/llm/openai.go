package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const chatModel = "gpt-4o-mini"

type OpenAIClient struct {
	client openai.Client
	model  string
}

func NewOpenAIClient(apiKey string, opts ...Option) *OpenAIClient {
	cfg := newClientConfig(chatModel, opts)
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(cfg.maxRetries),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	return &OpenAIClient{
		client: openai.NewClient(reqOpts...),
		model:  cfg.model,
	}
}

func (c *OpenAIClient) chat(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, temp float64) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(temp),
	})
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat API returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.chat(ctx, []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)}, 0.2)
}

func (c *OpenAIClient) CheckContradiction(ctx context.Context, stmtA, stmtB string) (bool, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You are a logical consistency checker."),
		openai.UserMessage(fmt.Sprintf(contradictionPrompt, stmtA, stmtB)),
	}

	result, err := c.chat(ctx, messages, 0)
	if err != nil {
		return false, fmt.Errorf("check contradiction: %w", err)
	}

	return parseVerdict(result), nil
}
