package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/rebelchris/recallect/internal/core/common"
	"github.com/rebelchris/recallect/internal/observability"
)

const (
	DefaultTimeout = 12 * time.Second

	breakerFailures = 3
	breakerCooldown = 30 * time.Second
)

// JSONClassifier wraps an LLMClient so every failure mode (timeout, provider error,
// open breaker, unparseable output) collapses into a nil result.
type JSONClassifier struct {
	LLM     LLMClient
	Timeout time.Duration
	Logger  *zap.Logger
	Metrics *observability.Collector

	breaker *gobreaker.CircuitBreaker
}

func NewJSONClassifier(client LLMClient, timeout time.Duration, logger *zap.Logger, metrics *observability.Collector) *JSONClassifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &JSONClassifier{
		LLM:     client,
		Timeout: timeout,
		Logger:  logger,
		Metrics: metrics,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 1,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c
}

func (c *JSONClassifier) CompleteJSON(ctx context.Context, messages []Message) map[string]any {
	if c == nil || c.LLM == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	start := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.LLM.Generate(ctx, messages)
	})
	elapsed := time.Since(start)

	if err != nil {
		outcome := observability.OutcomeError
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			outcome = observability.OutcomeBreakerOpen
		case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
			outcome = observability.OutcomeTimeout
		}
		c.Metrics.ObserveLLM(outcome, elapsed)
		c.Logger.Warn("LLM request failed, continuing without it",
			zap.String("outcome", outcome),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil
	}

	raw, _ := out.(string)
	parsed, err := common.ParseJSON[map[string]any](raw)
	if err != nil {
		c.Metrics.ObserveLLM(observability.OutcomeMalformed, elapsed)
		c.Logger.Warn("LLM returned malformed JSON",
			zap.String("outcome", observability.OutcomeMalformed),
			zap.String("response", common.Truncate(raw, 200)),
			zap.Error(err))
		return nil
	}

	c.Metrics.ObserveLLM(observability.OutcomeOK, elapsed)
	return parsed
}
