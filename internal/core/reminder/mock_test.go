package reminder

import (
	"context"

	"github.com/rebelchris/recallect/internal/llm"
)

type MockJSONClient struct {
	Response map[string]any
	Calls    int
	Messages []llm.Message
}

func (m *MockJSONClient) CompleteJSON(_ context.Context, messages []llm.Message) map[string]any {
	m.Calls++
	m.Messages = messages
	return m.Response
}
