package segment

import (
	"sort"
	"strings"
	"time"

	"github.com/rebelchris/recallect/internal/core/model"
)

type Options struct {
	CooldownDays       int
	IncludeLowPriority bool
	LimitPerSegment    int
}

type Item struct {
	ContactID     string         `json:"contactId"`
	ContactName   string         `json:"contactName"`
	Urgency       int            `json:"urgency"`
	Priority      model.Priority `json:"priority"`
	ActionLabel   string         `json:"actionLabel"`
	Reason        string         `json:"reason"`
	HealthScore   int            `json:"healthScore"`
	DaysSinceLast *int           `json:"daysSinceLast"`
	Pending       int            `json:"pendingReminders"`
	Overdue       int            `json:"overdueReminders"`
}

type Queue struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	GroupID   string `json:"groupId"`
	GroupName string `json:"groupName"`
	Items     []Item `json:"items"`
}

// Build produces one outreach queue per segment whose group exists and has members.
func Build(snapshot model.Snapshot, now time.Time, configs []Config, opts Options) []Queue {
	groups := distinctGroups(snapshot.Contacts)
	latest := model.LatestConversations(snapshot.Conversations)
	reminders := model.RemindersByContact(snapshot.Reminders)

	var queues []Queue
	for _, cfg := range configs {
		group, ok := MatchGroup(cfg, groups)
		if !ok {
			continue
		}

		var members []model.Contact
		for _, c := range snapshot.Contacts {
			if c.InGroup(group.ID) {
				members = append(members, c)
			}
		}
		if len(members) == 0 {
			continue
		}

		items := make([]Item, 0, len(members))
		for _, c := range members {
			sig := Assess(c, LastInteraction(latest, c.ID), reminders[c.ID], now)

			if sig.DaysSinceLast != nil && *sig.DaysSinceLast <= opts.CooldownDays && sig.Pending == 0 && sig.Overdue == 0 {
				continue
			}

			priority := PriorityFor(sig.Urgency)
			if priority == model.PriorityLow && !opts.IncludeLowPriority {
				continue
			}

			items = append(items, Item{
				ContactID:     c.ID,
				ContactName:   c.DisplayName(),
				Urgency:       sig.Urgency,
				Priority:      priority,
				ActionLabel:   actionLabel(cfg, sig),
				Reason:        sig.Reason(cfg.FallbackReason),
				HealthScore:   sig.Health.Score,
				DaysSinceLast: sig.DaysSinceLast,
				Pending:       sig.Pending,
				Overdue:       sig.Overdue,
			})
		}

		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i], items[j]
			if a.Urgency != b.Urgency {
				return a.Urgency > b.Urgency
			}
			an, bn := strings.ToLower(a.ContactName), strings.ToLower(b.ContactName)
			if an != bn {
				return an < bn
			}
			return a.ContactID < b.ContactID
		})
		if opts.LimitPerSegment > 0 && len(items) > opts.LimitPerSegment {
			items = items[:opts.LimitPerSegment]
		}

		queues = append(queues, Queue{
			Key:       cfg.Key,
			Label:     cfg.Label,
			GroupID:   group.ID,
			GroupName: group.Name,
			Items:     items,
		})
	}
	return queues
}

func actionLabel(cfg Config, sig Signals) string {
	switch {
	case sig.Overdue > 0:
		return "Close loop"
	case cfg.Key == WorkKey && sig.Pending > 0:
		return "Send follow-up"
	default:
		return cfg.DefaultAction
	}
}

func distinctGroups(contacts []model.Contact) []model.Group {
	seen := make(map[string]bool)
	var out []model.Group
	for _, c := range contacts {
		for _, g := range c.Groups {
			if seen[g.ID] {
				continue
			}
			seen[g.ID] = true
			out = append(out, g)
		}
	}
	return out
}

// LastInteraction returns the timestamp of a contact's latest conversation, if any.
func LastInteraction(latest map[string]model.Conversation, contactID string) *time.Time {
	conv, ok := latest[contactID]
	if !ok {
		return nil
	}
	ts := conv.Timestamp
	return &ts
}
