package review

import (
	"sort"
	"strings"
	"time"

	"github.com/rebelchris/recallect/internal/core/common"
	"github.com/rebelchris/recallect/internal/core/health"
	"github.com/rebelchris/recallect/internal/core/model"
	"github.com/rebelchris/recallect/internal/core/segment"
)

const (
	DefaultWindowDays = 7
	maxNextSteps      = 5
	previewLength     = 80
	defaultAction     = "Check in"
)

type AttendedContact struct {
	ContactID       string    `json:"contactId"`
	ContactName     string    `json:"contactName"`
	Interactions    int       `json:"interactions"`
	LastInteraction time.Time `json:"lastInteraction"`
	Preview         string    `json:"preview"`
}

type IgnoredContact struct {
	ContactID     string         `json:"contactId"`
	ContactName   string         `json:"contactName"`
	HealthScore   int            `json:"healthScore"`
	Urgency       int            `json:"urgency"`
	Priority      model.Priority `json:"priority"`
	DaysSinceLast *int           `json:"daysSinceLast"`
	Pending       int            `json:"pendingReminders"`
	Overdue       int            `json:"overdueReminders"`

	signals segment.Signals
	groups  []model.Group
}

type Step struct {
	ContactID   string         `json:"contactId"`
	ContactName string         `json:"contactName"`
	ActionLabel string         `json:"actionLabel"`
	Reason      string         `json:"reason"`
	Priority    model.Priority `json:"priority"`
}

type Summary struct {
	Interactions    int `json:"interactions"`
	ContactsReached int `json:"contactsReached"`
	AtRiskContacts  int `json:"atRiskContacts"`
	OpenLoops       int `json:"openLoops"`
	ClosedLoops     int `json:"closedLoops"`
}

type Review struct {
	WindowDays int               `json:"windowDays"`
	From       time.Time         `json:"from"`
	To         time.Time         `json:"to"`
	Summary    Summary           `json:"summary"`
	Attended   []AttendedContact `json:"attended"`
	Ignored    []IgnoredContact  `json:"ignored"`
	NextSteps  []Step            `json:"nextSteps"`
}

// Build splits contacts into those reached within the window and those ignored,
// and proposes next steps for the most neglected ones.
func Build(snapshot model.Snapshot, now time.Time, windowDays int, configs []segment.Config) Review {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	from := now.AddDate(0, 0, -windowDays)

	r := Review{
		WindowDays: windowDays,
		From:       from,
		To:         now,
		Attended:   []AttendedContact{},
		Ignored:    []IgnoredContact{},
		NextSteps:  []Step{},
	}

	contacts := snapshot.ContactIndex()
	attended := make(map[string]*AttendedContact)
	for _, conv := range snapshot.Conversations {
		if conv.Timestamp.Before(from) {
			continue
		}
		c, ok := contacts[conv.ContactID]
		if !ok {
			continue
		}
		r.Summary.Interactions++

		a, ok := attended[c.ID]
		if !ok {
			a = &AttendedContact{ContactID: c.ID, ContactName: c.DisplayName()}
			attended[c.ID] = a
		}
		a.Interactions++
		if a.Interactions == 1 || conv.Timestamp.After(a.LastInteraction) {
			a.LastInteraction = conv.Timestamp
			a.Preview = common.Truncate(common.FirstLine(strings.TrimSpace(conv.Content)), previewLength)
		}
	}
	r.Summary.ContactsReached = len(attended)

	latest := model.LatestConversations(snapshot.Conversations)
	reminders := model.RemindersByContact(snapshot.Reminders)

	for _, c := range snapshot.Contacts {
		sig := segment.Assess(c, segment.LastInteraction(latest, c.ID), reminders[c.ID], now)
		if sig.Health.Score < health.AtRiskThreshold {
			r.Summary.AtRiskContacts++
		}
		if a, ok := attended[c.ID]; ok {
			r.Attended = append(r.Attended, *a)
			continue
		}
		r.Ignored = append(r.Ignored, IgnoredContact{
			ContactID:     c.ID,
			ContactName:   c.DisplayName(),
			HealthScore:   sig.Health.Score,
			Urgency:       sig.Urgency,
			Priority:      segment.PriorityFor(sig.Urgency),
			DaysSinceLast: sig.DaysSinceLast,
			Pending:       sig.Pending,
			Overdue:       sig.Overdue,
			signals:       sig,
			groups:        c.Groups,
		})
	}

	for _, rem := range snapshot.Reminders {
		switch {
		case rem.IsOverdue(now):
			r.Summary.OpenLoops++
		case rem.Status == model.ReminderDismissed && !rem.RemindAt.Before(from) && !rem.RemindAt.After(now):
			// Dismissal time is not tracked, so the due date stands in for it.
			r.Summary.ClosedLoops++
		}
	}

	sort.SliceStable(r.Attended, func(i, j int) bool {
		a, b := r.Attended[i], r.Attended[j]
		if a.Interactions != b.Interactions {
			return a.Interactions > b.Interactions
		}
		if !a.LastInteraction.Equal(b.LastInteraction) {
			return a.LastInteraction.After(b.LastInteraction)
		}
		return strings.ToLower(a.ContactName) < strings.ToLower(b.ContactName)
	})

	sort.SliceStable(r.Ignored, func(i, j int) bool {
		a, b := r.Ignored[i], r.Ignored[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		if a.HealthScore != b.HealthScore {
			return a.HealthScore < b.HealthScore
		}
		return strings.ToLower(a.ContactName) < strings.ToLower(b.ContactName)
	})

	for i, ig := range r.Ignored {
		if i == maxNextSteps {
			break
		}
		r.NextSteps = append(r.NextSteps, nextStep(ig, configs))
	}
	return r
}

func nextStep(ig IgnoredContact, configs []segment.Config) Step {
	step := Step{
		ContactID:   ig.ContactID,
		ContactName: ig.ContactName,
		ActionLabel: defaultAction,
		Priority:    ig.Priority,
	}

	cfg, matched := segment.ResolveConfig(configs, ig.groups)
	if matched {
		step.ActionLabel = cfg.DefaultAction
	}

	switch {
	case ig.signals.ReminderReason() != "":
		step.Reason = ig.signals.ReminderReason()
	case matched && cfg.FallbackReason != "":
		step.Reason = cfg.FallbackReason
	default:
		step.Reason = ig.signals.Reason("No recent interaction")
	}
	return step
}
