package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "u1", r.Header.Get("X-User-ID"))
		assert.Equal(t, "/focus", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"items":[{"contactName":"Sam","score":100,"priority":"high","actionLabel":"Close loop","reason":"Reminder overdue by 3 days"}]}`))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, UserID: "u1"}
	var out struct {
		Items []focusItem `json:"items"`
	}
	_, err := c.Get("/focus", url.Values{"limit": {"2"}}, &out)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Sam", out.Items[0].ContactName)

	var buf bytes.Buffer
	printFocus(&buf, out.Items)
	assert.Contains(t, buf.String(), "Close loop")
}

func TestClientPostAndErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["content"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"conversation content is empty"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"conversation":{"id":"c9"},"reminder":{"id":"r9","remindAt":"2025-06-22T09:00:00Z","note":"Follow up"}}`))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, UserID: "u1"}

	var out logResult
	_, err := c.Post("/contacts/sam/conversations", map[string]string{"content": "hi"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "c9", out.Conversation.ID)
	require.NotNil(t, out.Reminder)

	var buf bytes.Buffer
	printLogResult(&buf, out)
	assert.Contains(t, buf.String(), "Reminder set for 2025-06-22T09:00:00Z")

	_, err = c.Post("/contacts/sam/conversations", map[string]string{"content": ""}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conversation content is empty")
}

func TestPrintReview(t *testing.T) {
	var r weeklyReview
	require.NoError(t, json.Unmarshal([]byte(`{"windowDays":7,"summary":{"interactions":4,"contactsReached":3,"atRiskContacts":1,"openLoops":1,"closedLoops":1},"nextSteps":[{"contactName":"Dee","actionLabel":"Call","reason":"1 overdue reminder","priority":"high"}]}`), &r))

	var buf bytes.Buffer
	printReview(&buf, r)
	assert.Contains(t, buf.String(), "Last 7 days: 4 interactions with 3 contacts")
	assert.Contains(t, buf.String(), "[HIGH] Call Dee: 1 overdue reminder")
}
