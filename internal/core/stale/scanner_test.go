package stale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebelchris/recallect/internal/core/health"
	"github.com/rebelchris/recallect/internal/core/model"
)

var now = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func ago(days int) time.Time {
	return now.AddDate(0, 0, -days)
}

func TestScan_FiltersAndRanks(t *testing.T) {
	contacts := []model.Contact{
		{ID: "fresh", Frequency: model.CadenceMonthly, CreatedAt: ago(400)},
		{ID: "approaching", Frequency: model.CadenceMonthly, CreatedAt: ago(400)},
		{ID: "way-over", Frequency: model.CadenceWeekly, CreatedAt: ago(400)},
		{ID: "no-goal", CreatedAt: ago(400)},
		{ID: "never-talked", Frequency: model.CadenceBiweekly, CreatedAt: ago(21)},
	}
	conversations := []model.Conversation{
		{ContactID: "fresh", Timestamp: ago(10)},
		{ContactID: "approaching", Timestamp: ago(60)},
		{ContactID: "approaching", Timestamp: ago(25)}, // latest wins
		{ContactID: "way-over", Timestamp: ago(30)},
		{ContactID: "no-goal", Timestamp: ago(300)},
	}

	got := Scan(contacts, conversations, now)
	require.Len(t, got, 3)

	assert.Equal(t, "way-over", got[0].Contact.ID)
	assert.Equal(t, health.Red, got[0].Staleness)
	assert.Equal(t, 30, got[0].DaysSince)

	assert.Equal(t, "never-talked", got[1].Contact.ID)
	assert.Nil(t, got[1].LastInteraction)
	assert.Equal(t, 21, got[1].DaysSince)
	assert.Equal(t, health.Yellow, got[1].Staleness)

	assert.Equal(t, "approaching", got[2].Contact.ID)
	assert.Equal(t, 25, got[2].DaysSince)
	assert.Equal(t, health.Yellow, got[2].Staleness)
	require.NotNil(t, got[2].LastInteraction)
}

func TestScan_NeverBelowThresholdAndOrdered(t *testing.T) {
	var contacts []model.Contact
	var conversations []model.Conversation
	cadences := []model.Cadence{model.CadenceWeekly, model.CadenceBiweekly, model.CadenceMonthly, model.CadenceQuarterly}
	for i := 0; i < 40; i++ {
		id := string(rune('a'+i%26)) + string(rune('0'+i/26))
		contacts = append(contacts, model.Contact{ID: id, Frequency: cadences[i%len(cadences)], CreatedAt: ago(500)})
		conversations = append(conversations, model.Conversation{ContactID: id, Timestamp: ago(i * 3)})
	}

	got := Scan(contacts, conversations, now)
	for i, c := range got {
		assert.GreaterOrEqual(t, c.Ratio, Threshold)
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].Ratio, c.Ratio)
		}
	}
}

func TestScan_TiesKeepInputOrder(t *testing.T) {
	contacts := []model.Contact{
		{ID: "first", Frequency: model.CadenceWeekly, CreatedAt: ago(10)},
		{ID: "second", Frequency: model.CadenceWeekly, CreatedAt: ago(10)},
	}

	got := Scan(contacts, nil, now)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Contact.ID)
	assert.Equal(t, "second", got[1].Contact.ID)
}
