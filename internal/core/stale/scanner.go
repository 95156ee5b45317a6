package stale

import (
	"sort"
	"time"

	"github.com/rebelchris/recallect/internal/core/common"
	"github.com/rebelchris/recallect/internal/core/health"
	"github.com/rebelchris/recallect/internal/core/model"
)

// Threshold is the fraction of the cadence after which a contact is reported.
const Threshold = 0.8

// Contact is a contact at or past Threshold of its cadence.
type Contact struct {
	Contact         model.Contact    `json:"contact"`
	DaysSince       int              `json:"daysSince"`
	FrequencyDays   int              `json:"frequencyDays"`
	Ratio           float64          `json:"ratio"`
	Staleness       health.Staleness `json:"staleness"`
	LastInteraction *time.Time       `json:"lastInteraction,omitempty"`
}

// Scan returns contacts with a cadence whose time since last interaction (or since
// creation, when they have none) reaches Threshold of that cadence, most overdue first.
func Scan(contacts []model.Contact, conversations []model.Conversation, now time.Time) []Contact {
	latest := model.LatestConversations(conversations)

	var out []Contact
	for _, c := range contacts {
		freq := c.Frequency.Days()
		if freq <= 0 {
			continue
		}

		since := c.CreatedAt
		var last *time.Time
		if conv, ok := latest[c.ID]; ok {
			ts := conv.Timestamp
			since = ts
			last = &ts
		}

		days := common.DaysSince(since, now)
		if float64(days) < float64(freq)*Threshold {
			continue
		}

		out = append(out, Contact{
			Contact:         c,
			DaysSince:       days,
			FrequencyDays:   freq,
			Ratio:           float64(days) / float64(freq),
			Staleness:       health.GetStaleness(days, freq),
			LastInteraction: last,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Ratio > out[j].Ratio
	})
	return out
}
