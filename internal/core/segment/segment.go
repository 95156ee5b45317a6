package segment

import (
	"fmt"
	"strings"
	"time"

	"github.com/rebelchris/recallect/internal/core/health"
	"github.com/rebelchris/recallect/internal/core/model"
)

// Config binds a relationship segment to groups by name alias.
type Config struct {
	Key            string   `toml:"key" json:"key" validate:"required"`
	Label          string   `toml:"label" json:"label" validate:"required"`
	Aliases        []string `toml:"aliases" json:"aliases" validate:"required,min=1,dive,required"`
	DefaultAction  string   `toml:"default_action" json:"defaultAction" validate:"required"`
	FallbackReason string   `toml:"fallback_reason" json:"fallbackReason"`
}

const WorkKey = "work"

// DefaultConfigs is used when configuration does not override segments.
var DefaultConfigs = []Config{
	{
		Key:            "family",
		Label:          "Family",
		Aliases:        []string{"family", "fam", "parents", "relatives"},
		DefaultAction:  "Call",
		FallbackReason: "Keep family close",
	},
	{
		Key:            "friends",
		Label:          "Friends",
		Aliases:        []string{"friend", "buddies", "crew", "close"},
		DefaultAction:  "Check in",
		FallbackReason: "Stay in touch",
	},
	{
		Key:            WorkKey,
		Label:          "Work",
		Aliases:        []string{"work", "colleague", "coworker", "team", "professional", "network", "client"},
		DefaultAction:  "Reach out",
		FallbackReason: "Keep the relationship warm",
	},
}

// Matches reports whether a group name contains one of the config's aliases.
func (c Config) Matches(groupName string) bool {
	name := strings.ToLower(groupName)
	for _, alias := range c.Aliases {
		alias = strings.ToLower(strings.TrimSpace(alias))
		if alias != "" && strings.Contains(name, alias) {
			return true
		}
	}
	return false
}

// MatchGroup returns the first group, in order of appearance, that the config matches.
func MatchGroup(cfg Config, groups []model.Group) (model.Group, bool) {
	for _, g := range groups {
		if cfg.Matches(g.Name) {
			return g, true
		}
	}
	return model.Group{}, false
}

// ResolveConfig finds the first config matching any of the given groups.
func ResolveConfig(configs []Config, groups []model.Group) (Config, bool) {
	for _, cfg := range configs {
		if _, ok := MatchGroup(cfg, groups); ok {
			return cfg, true
		}
	}
	return Config{}, false
}

// Signals are the per-contact inputs shared by segment queues and the weekly review.
type Signals struct {
	Health        health.Health
	DaysSinceLast *int
	Pending       int
	Overdue       int
	Urgency       int
}

// Assess scores how much a contact needs attention. Higher urgency means more neglected.
func Assess(c model.Contact, lastInteraction *time.Time, reminders []model.Reminder, now time.Time) Signals {
	h := health.Calculate(health.Input{
		Frequency:       c.Frequency,
		LastInteraction: lastInteraction,
		Reminders:       reminders,
		Now:             now,
	})

	urgency := (100 - h.Score) + 18*h.OverdueReminderCount + 7*h.PendingReminderCount
	if h.DaysSinceLastInteraction == nil {
		urgency += 10
	} else if *h.DaysSinceLastInteraction >= 45 {
		urgency += 8
	}

	return Signals{
		Health:        h,
		DaysSinceLast: h.DaysSinceLastInteraction,
		Pending:       h.PendingReminderCount,
		Overdue:       h.OverdueReminderCount,
		Urgency:       urgency,
	}
}

// PriorityFor buckets an urgency score. This scale is independent of the Today Focus one.
func PriorityFor(urgency int) model.Priority {
	switch {
	case urgency >= 60:
		return model.PriorityHigh
	case urgency >= 40:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

// ReminderReason describes open reminders, or returns "" when there are none.
func (s Signals) ReminderReason() string {
	switch {
	case s.Overdue > 0:
		return countLabel(s.Overdue, "overdue reminder")
	case s.Pending > 0:
		return countLabel(s.Pending, "pending reminder")
	default:
		return ""
	}
}

// HistoryReason describes the interaction gap, or returns "" for a same-day touch.
func (s Signals) HistoryReason() string {
	switch {
	case s.DaysSinceLast == nil:
		return "No interactions logged yet"
	case *s.DaysSinceLast > 0:
		return fmt.Sprintf("Last interaction %dd ago", *s.DaysSinceLast)
	default:
		return ""
	}
}

// Reason picks the strongest signal, falling back when nothing stands out.
func (s Signals) Reason(fallback string) string {
	if r := s.ReminderReason(); r != "" {
		return r
	}
	if r := s.HistoryReason(); r != "" {
		return r
	}
	return fallback
}

func countLabel(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
