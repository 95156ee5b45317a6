package focus

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rebelchris/recallect/internal/core/common"
	"github.com/rebelchris/recallect/internal/core/dates"
	"github.com/rebelchris/recallect/internal/core/health"
	"github.com/rebelchris/recallect/internal/core/model"
	"github.com/rebelchris/recallect/internal/core/stale"
)

// Source names the signal that produced an item's primary score.
type Source string

const (
	SourceReminder      Source = "reminder"
	SourceImportantDate Source = "important-date"
	SourceStaleContact  Source = "stale-contact"
)

func (s Source) precedence() int {
	switch s {
	case SourceReminder:
		return 0
	case SourceImportantDate:
		return 1
	default:
		return 2
	}
}

const (
	// ReminderHorizonDays is how far ahead pending reminders are pulled in.
	ReminderHorizonDays = 7
	// DateHorizonDays is how far ahead important dates are pulled in.
	DateHorizonDays = 7

	highThreshold   = 85
	mediumThreshold = 72
)

type Options struct {
	CooldownDays       int
	IncludeLowPriority bool
	Limit              int
}

type Item struct {
	ContactID       string         `json:"contactId"`
	ContactName     string         `json:"contactName"`
	Source          Source         `json:"source"`
	Score           int            `json:"score"`
	Priority        model.Priority `json:"priority"`
	ActionLabel     string         `json:"actionLabel"`
	Reason          string         `json:"reason"`
	SecondaryReason string         `json:"secondaryReason,omitempty"`
	Reasons         []string       `json:"reasons"`
	DueAt           *time.Time     `json:"dueAt,omitempty"`
}

type candidate struct {
	contactID   string
	source      Source
	score       int
	actionLabel string
	reason      string
	dueAt       *time.Time
}

// Build merges due reminders, upcoming important dates and stale contacts into one
// queue with at most one item per contact.
func Build(snapshot model.Snapshot, now time.Time, opts Options) []Item {
	contacts := snapshot.ContactIndex()

	var candidates []candidate
	candidates = append(candidates, reminderCandidates(snapshot.Reminders, contacts, now)...)
	candidates = append(candidates, dateCandidates(snapshot.ImportantDates, contacts, now)...)
	candidates = append(candidates, staleCandidates(snapshot.Contacts, snapshot.Conversations, now, opts.CooldownDays)...)

	ranked := merge(candidates, contacts)

	result := ranked
	if !opts.IncludeLowPriority {
		var filtered []Item
		for _, it := range ranked {
			if it.Priority != model.PriorityLow {
				filtered = append(filtered, it)
			}
		}
		// Never hand back an empty queue when there is something to show.
		if len(filtered) > 0 {
			result = filtered
		}
	}

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result
}

// PriorityFor maps a focus score to its priority band.
func PriorityFor(score int) model.Priority {
	switch {
	case score >= highThreshold:
		return model.PriorityHigh
	case score >= mediumThreshold:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

func reminderCandidates(reminders []model.Reminder, contacts map[string]model.Contact, now time.Time) []candidate {
	var out []candidate
	for _, r := range reminders {
		if r.Status != model.ReminderPending {
			continue
		}
		if _, ok := contacts[r.ContactID]; !ok {
			continue
		}
		days := common.DaysBetween(now, r.RemindAt)
		if days > ReminderHorizonDays {
			continue
		}

		due := r.RemindAt
		c := candidate{contactID: r.ContactID, source: SourceReminder, dueAt: &due, actionLabel: "Follow up"}
		switch {
		case days < 0:
			c.score = 100
			c.actionLabel = "Close loop"
			c.reason = fmt.Sprintf("Reminder overdue by %s", plural(-days, "day"))
		case days == 0:
			c.score = 96
			c.reason = "Reminder due today"
		case days <= 2:
			c.score = 90
			c.reason = fmt.Sprintf("Reminder due in %s", plural(days, "day"))
		default:
			c.score = 82
			c.reason = fmt.Sprintf("Reminder due in %s", plural(days, "day"))
		}
		if note := strings.TrimSpace(r.Note); note != "" {
			c.reason += ": " + common.Truncate(common.FirstLine(note), 60)
		}
		out = append(out, c)
	}
	return out
}

func dateCandidates(importantDates []model.ImportantDate, contacts map[string]model.Contact, now time.Time) []candidate {
	var out []candidate
	for _, u := range dates.Resolve(importantDates, now, DateHorizonDays) {
		if _, ok := contacts[u.ContactID]; !ok {
			continue
		}
		occurs := u.Occurs
		c := candidate{contactID: u.ContactID, source: SourceImportantDate, dueAt: &occurs}
		switch {
		case u.DaysUntil == 0:
			c.score = 94
			c.reason = u.Date.Title() + " today"
		case u.DaysUntil == 1:
			c.score = 88
			c.reason = u.Date.Title() + " tomorrow"
		case u.DaysUntil <= 3:
			c.score = 80
			c.reason = fmt.Sprintf("%s in %d days", u.Date.Title(), u.DaysUntil)
		default:
			c.score = 74
			c.reason = fmt.Sprintf("%s in %d days", u.Date.Title(), u.DaysUntil)
		}
		switch u.Date.Label {
		case model.DateBirthday, model.DateAnniversary:
			c.actionLabel = "Send wishes"
		default:
			c.actionLabel = "Reach out"
		}
		out = append(out, c)
	}
	return out
}

func staleCandidates(contacts []model.Contact, conversations []model.Conversation, now time.Time, cooldownDays int) []candidate {
	var out []candidate
	for _, s := range stale.Scan(contacts, conversations, now) {
		// A recent touch suppresses nagging until the contact is properly late.
		if s.Staleness == health.Yellow && s.DaysSince <= cooldownDays {
			continue
		}
		c := candidate{contactID: s.Contact.ID, source: SourceStaleContact, actionLabel: "Check in"}
		switch {
		case s.Ratio >= 2:
			c.score = 84
		case s.Ratio >= 1.4:
			c.score = 76
		default:
			c.score = 70
		}
		if s.LastInteraction == nil {
			c.reason = fmt.Sprintf("No interactions logged in %s (goal every %s)", plural(s.DaysSince, "day"), plural(s.FrequencyDays, "day"))
		} else {
			c.reason = fmt.Sprintf("Last interaction %s ago (goal every %s)", plural(s.DaysSince, "day"), plural(s.FrequencyDays, "day"))
		}
		out = append(out, c)
	}
	return out
}

func merge(candidates []candidate, contacts map[string]model.Contact) []Item {
	type merged struct {
		best    candidate
		reasons []string
	}
	byContact := make(map[string]*merged)
	var order []string

	for _, c := range candidates {
		m, ok := byContact[c.contactID]
		if !ok {
			byContact[c.contactID] = &merged{best: c, reasons: []string{c.reason}}
			order = append(order, c.contactID)
			continue
		}
		if !contains(m.reasons, c.reason) {
			m.reasons = append(m.reasons, c.reason)
		}
		if c.score > m.best.score {
			m.best = c
		}
	}

	items := make([]Item, 0, len(order))
	for _, id := range order {
		m := byContact[id]
		reasons := make([]string, 0, len(m.reasons))
		reasons = append(reasons, m.best.reason)
		for _, r := range m.reasons {
			if r != m.best.reason {
				reasons = append(reasons, r)
			}
		}

		it := Item{
			ContactID:   id,
			ContactName: contacts[id].DisplayName(),
			Source:      m.best.source,
			Score:       m.best.score,
			Priority:    PriorityFor(m.best.score),
			ActionLabel: m.best.actionLabel,
			Reason:      m.best.reason,
			Reasons:     reasons,
			DueAt:       m.best.dueAt,
		}
		if len(reasons) > 1 {
			it.SecondaryReason = reasons[1]
		}
		items = append(items, it)
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Source != b.Source {
			return a.Source.precedence() < b.Source.precedence()
		}
		an, bn := strings.ToLower(a.ContactName), strings.ToLower(b.ContactName)
		if an != bn {
			return an < bn
		}
		return a.ContactID < b.ContactID
	})
	return items
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
