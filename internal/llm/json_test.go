package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebelchris/recallect/internal/observability"
)

func newClassifier(client LLMClient, timeout time.Duration) (*JSONClassifier, *observability.Collector) {
	metrics := observability.NewCollector(observability.Namespace)
	return NewJSONClassifier(client, timeout, nil, metrics), metrics
}

func outcomes(m *observability.Collector, outcome string) float64 {
	return testutil.ToFloat64(m.LLMRequests.WithLabelValues(outcome))
}

func TestCompleteJSON_ParsesFencedObject(t *testing.T) {
	mock := &MockLLMClient{Response: "Sure!\n```json\n{\"should_remind\": true, \"days_until\": 3}\n```"}
	c, metrics := newClassifier(mock, time.Second)

	msgs := []Message{System("classify"), User("hello")}
	got := c.CompleteJSON(context.Background(), msgs)

	require.NotNil(t, got)
	assert.Equal(t, true, got["should_remind"])
	assert.Equal(t, 3.0, got["days_until"])
	assert.Equal(t, msgs, mock.Messages)
	assert.Equal(t, 1.0, outcomes(metrics, observability.OutcomeOK))
}

func TestCompleteJSON_Malformed(t *testing.T) {
	c, metrics := newClassifier(&MockLLMClient{Response: "I cannot help with that."}, time.Second)
	assert.Nil(t, c.CompleteJSON(context.Background(), []Message{User("x")}))
	assert.Equal(t, 1.0, outcomes(metrics, observability.OutcomeMalformed))
}

func TestCompleteJSON_ProviderError(t *testing.T) {
	c, metrics := newClassifier(&MockLLMClient{Err: errors.New("502 bad gateway")}, time.Second)
	assert.Nil(t, c.CompleteJSON(context.Background(), []Message{User("x")}))
	assert.Equal(t, 1.0, outcomes(metrics, observability.OutcomeError))
}

func TestCompleteJSON_Timeout(t *testing.T) {
	c, metrics := newClassifier(&MockLLMClient{Block: true}, 20*time.Millisecond)

	start := time.Now()
	assert.Nil(t, c.CompleteJSON(context.Background(), []Message{User("x")}))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 1.0, outcomes(metrics, observability.OutcomeTimeout))
}

func TestCompleteJSON_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	mock := &MockLLMClient{Err: errors.New("connection refused")}
	c, metrics := newClassifier(mock, time.Second)

	for i := 0; i < breakerFailures+2; i++ {
		assert.Nil(t, c.CompleteJSON(context.Background(), []Message{User("x")}))
	}

	assert.Equal(t, breakerFailures, mock.Calls, "open breaker must not reach the provider")
	assert.Equal(t, float64(breakerFailures), outcomes(metrics, observability.OutcomeError))
	assert.Equal(t, 2.0, outcomes(metrics, observability.OutcomeBreakerOpen))
}

func TestCompleteJSON_NilSafe(t *testing.T) {
	var c *JSONClassifier
	assert.Nil(t, c.CompleteJSON(context.Background(), nil))

	empty := NewJSONClassifier(nil, 0, nil, nil)
	assert.Equal(t, DefaultTimeout, empty.Timeout)
	assert.Nil(t, empty.CompleteJSON(context.Background(), nil))
}
