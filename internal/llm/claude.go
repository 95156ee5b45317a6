package llm

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"
)

type ClaudeClient struct {
	client *anthropic.Client
	model  string
}

func NewClaudeClient(apiKey string, model string, baseURL string) *ClaudeClient {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &ClaudeClient{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

func (c *ClaudeClient) Generate(ctx context.Context, messages []Message) (string, error) {
	system, turns := splitSystem(messages)

	req := anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		System:    system,
		Messages:  make([]anthropic.Message, 0, len(turns)),
		MaxTokens: 512,
	}
	for _, m := range turns {
		if m.Role == RoleAssistant {
			req.Messages = append(req.Messages, anthropic.NewAssistantTextMessage(m.Content))
		} else {
			req.Messages = append(req.Messages, anthropic.NewUserTextMessage(m.Content))
		}
	}

	resp, err := c.client.CreateMessages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}
	for _, part := range resp.Content {
		if part.Text != nil {
			return *part.Text, nil
		}
	}
	return "", fmt.Errorf("no response content")
}
