package llm

import (
	"context"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func System(content string) Message { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message   { return Message{Role: RoleUser, Content: content} }

// LLMClient is a chat-style text completion provider.
type LLMClient interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// JSONClient returns a best-effort JSON object for a conversation, or nil when the
// provider is unavailable, slow or answers with something that is not JSON.
type JSONClient interface {
	CompleteJSON(ctx context.Context, messages []Message) map[string]any
}

// splitSystem separates system instructions from the turn-by-turn messages for
// providers that carry them out of band.
func splitSystem(messages []Message) (system string, turns []Message) {
	for _, m := range messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		turns = append(turns, m)
	}
	return system, turns
}
