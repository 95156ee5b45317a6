package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebelchris/recallect/internal/config"
	"github.com/rebelchris/recallect/internal/core"
	"github.com/rebelchris/recallect/internal/driver"
	"github.com/rebelchris/recallect/internal/observability"
)

var now = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

type fakeDriver struct {
	results map[string]neo4j.EagerResult
	queries []string
}

func (f *fakeDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	f.queries = append(f.queries, query)
	return f.results[query], nil
}

func (f *fakeDriver) BuildIndices(ctx context.Context) error { return nil }
func (f *fakeDriver) Close(ctx context.Context) error        { return nil }

func rows(maps ...map[string]any) neo4j.EagerResult {
	res := neo4j.EagerResult{}
	for _, m := range maps {
		rec := &neo4j.Record{}
		for k, v := range m {
			rec.Keys = append(rec.Keys, k)
			rec.Values = append(rec.Values, v)
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

func ts(days int) string {
	return now.AddDate(0, 0, days).Format(time.RFC3339)
}

func setup(t *testing.T) (*gin.Engine, *fakeDriver, *observability.Collector) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sam := map[string]any{
		"id": "sam", "name": "Sam", "contact_frequency": "monthly",
		"created_at": ts(-365), "groups": []any{map[string]any{"id": "g1", "name": "Family"}},
	}
	d := &fakeDriver{results: map[string]neo4j.EagerResult{
		driver.GetContactsQuery: rows(sam),
		driver.GetContactQuery:  rows(sam),
		driver.GetConversationsQuery: rows(map[string]any{
			"id": "c1", "contact_id": "sam", "content": "Lunch", "type": "dinner",
			"timestamp": ts(-35), "created_at": ts(-35),
		}),
		driver.GetRemindersQuery: rows(map[string]any{
			"id": "r1", "contact_id": "sam", "remind_at": ts(-3), "status": "PENDING", "note": "Send photos",
		}),
	}}

	cfg := config.Default()
	metrics := observability.NewCollector(observability.Namespace)
	engine := core.NewEngine(d, nil, cfg, nil, metrics)
	engine.Clock = func() time.Time { return now }

	srv := NewServer(engine, cfg, nil, metrics)
	return srv.SetupRouter(), d, metrics
}

func do(r *gin.Engine, method, path, body string, withUser bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if withUser {
		req.Header.Set(userHeader, "u1")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	r, _, _ := setup(t)
	w := do(r, http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMissingUserHeader(t *testing.T) {
	r, d, _ := setup(t)
	w := do(r, http.MethodGet, "/focus", "", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, d.queries)
}

func TestContactHealth(t *testing.T) {
	r, _, _ := setup(t)

	w := do(r, http.MethodGet, "/contacts/sam/health", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(58), body["score"])
	assert.Equal(t, "at-risk", body["status"])

	w = do(r, http.MethodGet, "/contacts/ghost/health", "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFocus(t *testing.T) {
	r, _, _ := setup(t)

	w := do(r, http.MethodGet, "/focus", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["items"].([]any)
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	assert.Equal(t, "sam", first["contactId"])
	assert.Equal(t, float64(100), first["score"])
}

func TestFocusRejectsBadQuery(t *testing.T) {
	r, d, _ := setup(t)

	for _, q := range []string{"limit=20", "limit=abc", "cooldown=30", "include_low=maybe"} {
		w := do(r, http.MethodGet, "/focus?"+q, "", true)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
	assert.Empty(t, d.queries)
}

func TestSegments(t *testing.T) {
	r, _, _ := setup(t)

	w := do(r, http.MethodGet, "/segments?limit=2", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	queues := decode(t, w)["segments"].([]any)
	require.Len(t, queues, 1)

	w = do(r, http.MethodGet, "/segments?limit=9", "", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStaleUpcomingAndReview(t *testing.T) {
	r, _, _ := setup(t)

	w := do(r, http.MethodGet, "/stale", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["contacts"], 1)

	w = do(r, http.MethodGet, "/upcoming?days=14", "", true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/upcoming?days=400", "", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/review?days=14", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(14), body["windowDays"])

	w = do(r, http.MethodGet, "/review?days=0", "", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogConversation(t *testing.T) {
	r, d, _ := setup(t)

	w := do(r, http.MethodPost, "/contacts/sam/conversations", `{"content":"Coffee, let's catch up next week","type":"coffee"}`, true)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Contains(t, body, "conversation")
	assert.Contains(t, body, "reminder")
	assert.Contains(t, d.queries, driver.SaveConversationQuery)
	assert.Contains(t, d.queries, driver.CreateReminderQuery)
}

func TestLogConversationErrors(t *testing.T) {
	r, _, _ := setup(t)

	w := do(r, http.MethodPost, "/contacts/sam/conversations", `{"content":""}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/contacts/sam/conversations", `{"content":"   "}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/contacts/sam/conversations", `not json`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _, _ := setup(t)

	do(r, http.MethodGet, "/contacts/sam/health", "", true)
	w := do(r, http.MethodGet, "/metrics", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `recallect_http_requests_total{method="GET",route="/contacts/:id/health",status="200"} 1`)
}
