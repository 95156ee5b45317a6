//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rebelchris/recallect/internal/config"
	"github.com/rebelchris/recallect/internal/core"
	"github.com/rebelchris/recallect/internal/core/health"
	"github.com/rebelchris/recallect/internal/driver"
	"github.com/rebelchris/recallect/internal/llm"
	"github.com/rebelchris/recallect/internal/observability"
)

const seedQuery = `
	CREATE (c:Contact {id: $contact_id, user_id: $user_id, name: 'Sam', last_name: 'Rivera',
		contact_frequency: 'monthly', created_at: $created_at})
	CREATE (g:Group {id: $group_id, user_id: $user_id, name: 'Family'})
	CREATE (c)-[:IN_GROUP]->(g)
	CREATE (v:Conversation {id: $conversation_id, user_id: $user_id, content: 'Dinner downtown',
		type: 'dinner', timestamp: $last_seen, created_at: $last_seen})
	CREATE (c)-[:HAD]->(v)
	CREATE (r:Reminder {id: $reminder_id, user_id: $user_id, conversation_id: $conversation_id,
		remind_at: $remind_at, status: 'PENDING', note: 'Send the photos'})
	CREATE (c)-[:HAS_REMINDER]->(r)
`

const cleanupQuery = `MATCH (n {user_id: $user_id}) DETACH DELETE n`

func TestFullFlow(t *testing.T) {
	_ = godotenv.Load("../../.env")

	uri := os.Getenv("MEMGRAPH_URI")
	if uri == "" {
		t.Skip("Skipping integration test: MEMGRAPH_URI not set")
	}

	cfg := config.Default()
	cfg.ApplyEnv()
	require.NoError(t, cfg.Validate())

	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, logger)
	require.NoError(t, err)
	defer d.Close(ctx)
	require.NoError(t, d.BuildIndices(ctx))

	metrics := observability.NewCollector(observability.Namespace)
	client, err := llm.NewClient(ctx, cfg.LLM, logger)
	require.NoError(t, err)
	var classifier llm.JSONClient
	if client != nil {
		classifier = llm.NewJSONClassifier(client, time.Duration(cfg.LLM.TimeoutSeconds)*time.Second, logger, metrics)
	}

	engine := core.NewEngine(d, classifier, cfg, logger, metrics)
	now := time.Now().UTC()

	userID := "it-" + uuid.New().String()
	contactID := uuid.New().String()
	defer func() {
		_, _ = d.ExecuteQuery(ctx, cleanupQuery, map[string]any{"user_id": userID})
	}()

	_, err = d.ExecuteQuery(ctx, seedQuery, map[string]any{
		"user_id":         userID,
		"contact_id":      contactID,
		"group_id":        uuid.New().String(),
		"conversation_id": uuid.New().String(),
		"reminder_id":     uuid.New().String(),
		"created_at":      now.AddDate(-1, 0, 0).Format(time.RFC3339),
		"last_seen":       now.AddDate(0, 0, -35).Format(time.RFC3339),
		"remind_at":       now.AddDate(0, 0, -3).Format(time.RFC3339),
	})
	require.NoError(t, err)

	h, err := engine.Health(ctx, userID, contactID)
	require.NoError(t, err)
	assert.Equal(t, health.StatusAtRisk, h.Status)
	assert.Equal(t, 1, h.OverdueReminderCount)

	items, err := engine.TodayFocus(ctx, userID, cfg.Ranking)
	require.NoError(t, err)
	require.NotEmpty(t, items)
	assert.Equal(t, contactID, items[0].ContactID)

	queues, err := engine.SegmentQueues(ctx, userID, cfg.Ranking)
	require.NoError(t, err)
	require.Len(t, queues, 1)
	assert.Equal(t, "family", queues[0].Key)

	res, err := engine.LogConversation(ctx, userID, core.LogInput{
		ContactID: contactID,
		Content:   "Sent the photos, done. Let's follow up next month about the trip.",
		Type:      "text",
	})
	require.NoError(t, err)

	h, err = engine.Health(ctx, userID, contactID)
	require.NoError(t, err)
	assert.Equal(t, 0, *h.DaysSinceLastInteraction)

	// The rule path is deterministic; a live model may judge differently.
	if classifier == nil {
		require.NotNil(t, res.Resolution)
		assert.Len(t, res.Resolution.ReminderIDs, 1)
		assert.Equal(t, 0, h.OverdueReminderCount)
		require.NotNil(t, res.Reminder)
	}

	review, err := engine.WeeklyReview(ctx, userID, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, review.Summary.Interactions)
}
