package llm

import (
	"context"
	"sync"
)

type MockLLMClient struct {
	Response string
	Err      error
	// Block makes Generate wait for the context to end.
	Block bool

	mu       sync.Mutex
	Calls    int
	Messages []Message
}

func (m *MockLLMClient) Generate(ctx context.Context, messages []Message) (string, error) {
	m.mu.Lock()
	m.Calls++
	m.Messages = messages
	m.mu.Unlock()

	if m.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.Response, m.Err
}
